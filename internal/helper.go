package internal

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
	codecErr  error
)

func gpt4oCodec() (tokenizer.Codec, error) {
	codecOnce.Do(func() {
		codec, codecErr = tokenizer.ForModel(tokenizer.GPT4o)
	})
	return codec, codecErr
}

// CountTokens estimates how many tokens a chat endpoint will see for content, using the GPT-4o
// tokenizer. It is only an estimate for budgeting; segmentation never depends on it.
func CountTokens(content string) (int, error) {
	if content == "" {
		return 0, nil
	}

	enc, err := gpt4oCodec()
	if err != nil {
		return 0, fmt.Errorf("failed to get tokenizer: %w", err)
	}

	ids, _, err := enc.Encode(content)
	if err != nil {
		return 0, fmt.Errorf("failed to encode string: %w", err)
	}
	return len(ids), nil
}
