package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	"github.com/MegaGrindStone/go-longdoc/handler"
	"github.com/MegaGrindStone/go-longdoc/llm"
	"github.com/MegaGrindStone/go-longdoc/reader"
	"github.com/MegaGrindStone/go-longdoc/storage"
	"gopkg.in/yaml.v2"
)

type config struct {
	OpenAIBaseURL string         `yaml:"openai_base_url"`
	OpenAIAPIKey  string         `yaml:"openai_api_key"`
	OpenAIModel   string         `yaml:"openai_model"`
	Parameters    llm.Parameters `yaml:"parameters"`

	Prompt         string `yaml:"prompt"`
	KeepHistory    bool   `yaml:"keep_history"`
	MaxBatchTokens int    `yaml:"max_batch_tokens"`
	ResetProgress  bool   `yaml:"reset_progress"`

	LogLevel string `yaml:"log_level"`
}

const (
	docPath      = "book.txt"
	configPath   = "config.yaml"
	progressPath = "progress.db"
)

//nolint:lll
const defaultPrompt = `You will receive a long document in parts. This is part {{.Number}} of {{.Total}} ({{.Label}}).
Summarize this part in a few sentences, keeping names and events consistent with earlier parts.

{{.Content}}`

func main() {
	// The same file holds the chunking settings and the endpoint settings.
	data, err := os.ReadFile(configPath)
	if err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		return
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Printf("Error parsing config file: %v\n", err)
		return
	}

	docCfg, err := longdoc.ParseConfig(data)
	if err != nil {
		fmt.Printf("Error parsing chunking config: %v\n", err)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	segmenter, err := handler.FromConfig(docCfg)
	if err != nil {
		fmt.Printf("Error creating segmenter: %v\n", err)
		return
	}

	files := reader.FromConfig(docCfg)
	session := longdoc.NewSession(segmenter, longdoc.SessionOptions{
		BatchSize: docCfg.BatchSize,
		Policy:    files,
	}, logger)

	path := docPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	res := session.LoadFile(files, path)
	if !res.OK {
		fmt.Printf("Error loading document: %s\n", res.Reason)
		return
	}

	fmt.Println(session.Info())
	fmt.Println(session.SplitInfo())
	for _, b := range session.Batches() {
		line, _ := session.Describe(b.Index)
		fmt.Println("  " + line)
	}

	progress, err := storage.NewBolt(progressPath)
	if err != nil {
		fmt.Printf("Error creating boltDB: %v\n", err)
		return
	}
	defer progress.Close()

	if cfg.ResetProgress {
		if err := longdoc.ResetDispatch(session, progress); err != nil {
			fmt.Printf("Error resetting progress: %v\n", err)
			return
		}
	}

	fmt.Println("Send the document? [y/N]")
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	if strings.ToLower(strings.TrimSpace(answer)) != "y" {
		return
	}

	openAI := llm.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Parameters, logger)

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}

	replies, err := longdoc.Dispatch(session, openAI, progress, longdoc.DispatchConfig{
		Prompt:         prompt,
		KeepHistory:    cfg.KeepHistory,
		MaxBatchTokens: cfg.MaxBatchTokens,
	}, logger)
	for _, r := range replies {
		fmt.Printf("\n### %s\n\n%s\n", r.Label, r.Message)
	}
	if err != nil {
		fmt.Printf("Error dispatching document: %v\n", err)
		fmt.Println("Run again to resume from the first unsent batch.")
	}
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
