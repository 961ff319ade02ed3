package handler

import (
	"bytes"
	"fmt"
	"strings"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown implements longdoc.Segmenter for Markdown documents. Each heading at or above MaxLevel
// starts a new segment whose title is the heading's source line. Heading-like lines inside code
// blocks are not boundaries because boundaries come from the parsed document tree.
type Markdown struct {
	// MaxLevel is the deepest heading level that starts a segment. Defaults to 2 if not set.
	MaxLevel int
}

const defaultMarkdownLevel = 2

// Segments splits content at its headings.
func (m Markdown) Segments(content string) ([]longdoc.Segment, error) {
	if content == "" {
		return nil, nil
	}

	maxLevel := m.MaxLevel
	if maxLevel <= 0 {
		maxLevel = defaultMarkdownLevel
	}

	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var marks []longdoc.Mark
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Level > maxLevel || heading.Lines().Len() == 0 {
			return ast.WalkSkipChildren, nil
		}

		start := heading.Lines().At(0).Start
		lineStart := bytes.LastIndexByte(source[:start], '\n') + 1
		lineEnd := len(source)
		if i := bytes.IndexByte(source[start:], '\n'); i >= 0 {
			lineEnd = start + i
		}

		marks = append(marks, longdoc.Mark{
			Offset: lineStart,
			Title:  strings.TrimSpace(string(source[lineStart:lineEnd])),
		})

		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk markdown: %w", err)
	}

	return longdoc.Slice(content, marks), nil
}
