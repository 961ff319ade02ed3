package handler

import (
	"regexp"

	longdoc "github.com/MegaGrindStone/go-longdoc"
)

// Pattern implements longdoc.Segmenter with a regular expression in RE2 syntax whose matches mark
// the start of each segment. The zero value uses longdoc.DefaultPattern.
type Pattern struct {
	// Expr is the boundary expression. Empty selects longdoc.DefaultPattern.
	Expr string

	re *regexp.Regexp
}

// NewPattern compiles expr eagerly so a malformed expression is reported at configuration time.
func NewPattern(expr string) (Pattern, error) {
	re, err := longdoc.CompilePattern(expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Expr: re.String(), re: re}, nil
}

// Segments splits content at every match of the boundary expression.
// It returns an error wrapping longdoc.ErrInvalidPattern when Expr does not compile.
func (p Pattern) Segments(content string) ([]longdoc.Segment, error) {
	re := p.re
	if re == nil {
		var err error
		if re, err = longdoc.CompilePattern(p.Expr); err != nil {
			return nil, err
		}
	}
	return longdoc.Split(content, re), nil
}
