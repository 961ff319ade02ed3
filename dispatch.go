package longdoc

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/MegaGrindStone/go-longdoc/internal"
)

// DefaultDispatchPrompt wraps each batch before it is sent.
const DefaultDispatchPrompt = `Part {{.Number}} of {{.Total}}:

{{.Content}}`

const wholeSuffix = "-whole"

// DispatchConfig controls how Dispatch transmits a session's batches.
type DispatchConfig struct {
	// Prompt is a text/template executed with DispatchPromptData for every message.
	// Empty selects DefaultDispatchPrompt.
	Prompt string
	// KeepHistory sends the previous messages and replies along with every new batch.
	KeepHistory bool
	// Whole sends the entire document as a single message instead of batch by batch.
	Whole bool
	// MaxBatchTokens logs a warning for batches whose estimated token count exceeds it.
	// Zero disables the check.
	MaxBatchTokens int
}

// DispatchPromptData is the data available to DispatchConfig.Prompt.
type DispatchPromptData struct {
	Index   int
	Number  int
	Total   int
	Label   string
	Content string
}

// Reply is the endpoint's answer to one dispatched message.
type Reply struct {
	// BatchIndex is the batch that was sent, or -1 for a whole-document dispatch.
	BatchIndex int
	Label      string
	Message    string
}

// Dispatch sends the session's batches to llm in order and collects the replies.
//
// When progress is not nil, dispatch records the ordinal of the next unsent segment after every
// reply under the session's SplitKey, and a later run resumes at the batch holding that segment,
// even if the batch size changed in between. A whole-document dispatch records completion under
// the text fingerprint and is not sent again. It returns the replies received before the first
// failure together with the error.
func Dispatch(s *Session, llm LLM, progress ProgressStore, cfg DispatchConfig, logger *slog.Logger) ([]Reply, error) {
	if !s.Loaded() {
		return nil, ErrNotLoaded
	}

	logger = orDiscard(logger).With(
		slog.String("package", "longdoc"),
		slog.String("function", "Dispatch"),
		slog.String("document", s.Name()),
	)

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultDispatchPrompt
	}
	tmpl, err := template.New("dispatch").Parse(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dispatch prompt: %w", err)
	}

	if cfg.Whole {
		return dispatchWhole(s, llm, progress, tmpl, logger)
	}

	batches := s.Batches()
	docID := s.SplitKey()

	next, err := loadProgress(progress, docID)
	if err != nil {
		return nil, err
	}
	start := len(batches)
	for i, b := range batches {
		if b.Last >= next {
			start = i
			break
		}
	}
	if start >= len(batches) {
		logger.Info("Nothing left to dispatch", "batches", len(batches))
		return nil, nil
	}
	if start > 0 {
		logger.Info("Resuming dispatch", "from", start, "segment", next, "batches", len(batches))
	}

	var history []string
	replies := make([]Reply, 0, len(batches)-start)
	for _, b := range batches[start:] {
		warnOverBudget(logger, b, cfg.MaxBatchTokens)

		msg, err := renderPrompt(tmpl, DispatchPromptData{
			Index:   b.Index,
			Number:  b.Index + 1,
			Total:   len(batches),
			Label:   b.Label,
			Content: b.Content,
		})
		if err != nil {
			return replies, err
		}

		messages := []string{msg}
		if cfg.KeepHistory {
			messages = append(history, msg)
		}

		logger.Info("Dispatching batch", "index", b.Index, "label", b.Label, "messages", len(messages))

		res, err := llm.Chat(messages)
		if err != nil {
			return replies, fmt.Errorf("failed to dispatch batch %d: %w", b.Index, err)
		}

		replies = append(replies, Reply{BatchIndex: b.Index, Label: b.Label, Message: res})
		if cfg.KeepHistory {
			history = append(messages, res)
		}

		if progress != nil {
			if err := progress.SaveProgress(docID, b.Last+1); err != nil {
				return replies, fmt.Errorf("failed to save dispatch progress: %w", err)
			}
		}
	}

	return replies, nil
}

func dispatchWhole(s *Session, llm LLM, progress ProgressStore, tmpl *template.Template,
	logger *slog.Logger,
) ([]Reply, error) {
	docID := s.Fingerprint() + wholeSuffix
	done, err := loadProgress(progress, docID)
	if err != nil {
		return nil, err
	}
	if done > 0 {
		logger.Info("Document already dispatched")
		return nil, nil
	}

	content, _ := s.ContentForSending(-1)
	msg, err := renderPrompt(tmpl, DispatchPromptData{
		Index:   -1,
		Number:  1,
		Total:   1,
		Label:   TitleWholeDocument,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Dispatching whole document", "characters", len(content))

	res, err := llm.Chat([]string{msg})
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch document: %w", err)
	}

	replies := []Reply{{BatchIndex: -1, Label: TitleWholeDocument, Message: res}}
	if progress != nil {
		if err := progress.SaveProgress(docID, 1); err != nil {
			return replies, fmt.Errorf("failed to save dispatch progress: %w", err)
		}
	}

	return replies, nil
}

// ResetDispatch forgets the recorded progress of the loaded document, both batch by batch and
// whole, so the next Dispatch starts from the beginning.
func ResetDispatch(s *Session, progress ProgressStore) error {
	if !s.Loaded() {
		return ErrNotLoaded
	}
	if err := progress.ResetProgress(s.SplitKey()); err != nil {
		return fmt.Errorf("failed to reset dispatch progress: %w", err)
	}
	if err := progress.ResetProgress(s.Fingerprint() + wholeSuffix); err != nil {
		return fmt.Errorf("failed to reset dispatch progress: %w", err)
	}
	return nil
}

// loadProgress returns the stored progress for docID, or 0 when progress is nil or has no entry.
func loadProgress(progress ProgressStore, docID string) (int, error) {
	if progress == nil {
		return 0, nil
	}
	next, err := progress.Progress(docID)
	switch {
	case errors.Is(err, ErrProgressNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("failed to get dispatch progress: %w", err)
	case next < 0:
		return 0, fmt.Errorf("%w: %d for %s", ErrCorruptProgress, next, docID)
	}
	return next, nil
}

func renderPrompt(tmpl *template.Template, data DispatchPromptData) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func warnOverBudget(logger *slog.Logger, b Batch, limit int) {
	if limit <= 0 {
		return
	}
	tokens, err := internal.CountTokens(b.Content)
	if err != nil {
		logger.Warn("Failed to estimate batch tokens", "index", b.Index, "error", err)
		return
	}
	if tokens > limit {
		logger.Warn("Batch exceeds token budget", "index", b.Index, "tokens", tokens, "limit", limit)
	}
}
