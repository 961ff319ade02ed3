package llm

// Parameters contains the optional sampling parameters sent with every dispatched batch.
//
// Not all parameters are supported by all providers; unsupported ones are ignored.
type Parameters struct {
	Temperature      *float32 `yaml:"temperature"`
	TopP             *float32 `yaml:"topP"`
	TopK             *int     `yaml:"topK"`
	FrequencyPenalty *float32 `yaml:"frequencyPenalty"`
	PresencePenalty  *float32 `yaml:"presencePenalty"`
	Seed             *int     `yaml:"seed"`
	MaxTokens        *int     `yaml:"maxTokens"`
	Stop             []string `yaml:"stop"`
	// IncludeReasoning keeps <think> blocks in replies. They are stripped by default.
	IncludeReasoning *bool `yaml:"includeReasoning"`

	// SystemPrompt, when set, is sent as a system message ahead of the conversation.
	SystemPrompt string `yaml:"systemPrompt"`
	// TimeoutSeconds bounds a single chat call. Defaults to the provider's timeout if zero.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

func (p Parameters) keepReasoning() bool {
	return p.IncludeReasoning != nil && *p.IncludeReasoning
}
