package handler_test

import (
	"errors"
	"testing"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	"github.com/MegaGrindStone/go-longdoc/handler"
)

func TestFromConfig(t *testing.T) {
	content := "preface\n第一章 A\nbody"

	tests := []struct {
		name        string
		cfg         longdoc.Config
		wantType    string
		wantErr     error
		expectError bool
	}{
		{name: "Default engine", cfg: longdoc.DefaultConfig(), wantType: "pattern"},
		{name: "Unset engine", cfg: longdoc.Config{}, wantType: "pattern"},
		{name: "Backtracking engine", cfg: longdoc.Config{Engine: longdoc.EngineRegexp2}, wantType: "lookaround"},
		{name: "Markdown engine", cfg: longdoc.Config{Engine: longdoc.EngineMarkdown, MarkdownLevel: 3}, wantType: "markdown"},
		{
			name:        "Malformed re2 pattern",
			cfg:         longdoc.Config{Engine: longdoc.EngineRE2, Pattern: "(?<=x)"},
			wantErr:     longdoc.ErrInvalidPattern,
			expectError: true,
		},
		{
			name:        "Malformed regexp2 pattern",
			cfg:         longdoc.Config{Engine: longdoc.EngineRegexp2, Pattern: "[a-"},
			wantErr:     longdoc.ErrInvalidPattern,
			expectError: true,
		},
		{name: "Unknown engine", cfg: longdoc.Config{Engine: "pcre"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg, err := handler.FromConfig(tt.cfg)
			if tt.expectError {
				if err == nil {
					t.Fatal("FromConfig() expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("FromConfig() error = %v, want %v", err, tt.wantErr)
				}
				if seg != nil {
					t.Errorf("FromConfig() returned segmenter %#v alongside an error", seg)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromConfig() unexpected error = %v", err)
			}

			switch got := seg.(type) {
			case handler.Pattern:
				if tt.wantType != "pattern" {
					t.Errorf("FromConfig() = Pattern, want %s", tt.wantType)
				}
			case handler.Lookaround:
				if tt.wantType != "lookaround" {
					t.Errorf("FromConfig() = Lookaround, want %s", tt.wantType)
				}
			case handler.Markdown:
				if tt.wantType != "markdown" {
					t.Errorf("FromConfig() = Markdown, want %s", tt.wantType)
				}
				if got.MaxLevel != tt.cfg.MarkdownLevel {
					t.Errorf("MaxLevel = %d, want %d", got.MaxLevel, tt.cfg.MarkdownLevel)
				}
			default:
				t.Fatalf("FromConfig() returned unexpected type %T", seg)
			}

			if tt.wantType == "markdown" {
				return
			}
			segments, err := seg.Segments(content)
			if err != nil {
				t.Fatalf("Segments() unexpected error = %v", err)
			}
			verifyTitles(t, segments, []string{longdoc.TitlePreamble, "第一章 A"})
		})
	}
}
