package handler

import (
	"fmt"
	"strings"

	longdoc "github.com/MegaGrindStone/go-longdoc"
	"github.com/dlclark/regexp2"
)

// Lookaround implements longdoc.Segmenter with a backtracking regular expression engine, for
// boundary conventions that need lookahead, lookbehind or backreferences, which RE2 lacks.
// The expression is always compiled in multiline mode, so ^ and $ match at line breaks.
type Lookaround struct {
	// Expr is the boundary expression. Empty selects longdoc.DefaultPattern.
	Expr string

	re *regexp2.Regexp
}

// NewLookaround compiles expr eagerly so a malformed expression is reported at configuration time.
func NewLookaround(expr string) (Lookaround, error) {
	re, err := compileLookaround(expr)
	if err != nil {
		return Lookaround{}, err
	}
	return Lookaround{Expr: expr, re: re}, nil
}

// Segments splits content at every match of the boundary expression.
func (l Lookaround) Segments(content string) ([]longdoc.Segment, error) {
	if content == "" {
		return nil, nil
	}

	re := l.re
	if re == nil {
		var err error
		if re, err = compileLookaround(l.Expr); err != nil {
			return nil, err
		}
	}

	// regexp2 reports positions in runes; slicing needs byte offsets.
	offsets := runeOffsets(content)

	var marks []longdoc.Mark
	m, err := re.FindStringMatch(content)
	for m != nil && err == nil {
		start := offsets[m.Index]
		end := offsets[m.Index+m.Length]
		marks = append(marks, longdoc.Mark{
			Offset: start,
			Title:  strings.TrimSpace(content[start:end]),
		})
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to match boundaries: %w", err)
	}

	return longdoc.Slice(content, marks), nil
}

func compileLookaround(expr string) (*regexp2.Regexp, error) {
	if expr == "" {
		expr = longdoc.DefaultPattern
	}
	re, err := regexp2.Compile(expr, regexp2.Multiline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", longdoc.ErrInvalidPattern, err)
	}
	return re, nil
}

// runeOffsets maps every rune index of s, plus one past the end, to its byte offset.
func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
