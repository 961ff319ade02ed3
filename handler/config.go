package handler

import (
	"fmt"

	longdoc "github.com/MegaGrindStone/go-longdoc"
)

// FromConfig builds the segmenter selected by cfg.Engine. Patterns are compiled here, so a
// malformed expression surfaces as an error wrapping longdoc.ErrInvalidPattern before any
// document is loaded.
func FromConfig(cfg longdoc.Config) (longdoc.Segmenter, error) {
	switch cfg.Engine {
	case "", longdoc.EngineRE2:
		p, err := NewPattern(cfg.Pattern)
		if err != nil {
			return nil, err
		}
		return p, nil
	case longdoc.EngineRegexp2:
		l, err := NewLookaround(cfg.Pattern)
		if err != nil {
			return nil, err
		}
		return l, nil
	case longdoc.EngineMarkdown:
		return Markdown{MaxLevel: cfg.MarkdownLevel}, nil
	default:
		return nil, fmt.Errorf("unknown boundary engine %q", cfg.Engine)
	}
}
