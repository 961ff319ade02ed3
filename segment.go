package longdoc

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultPattern recognizes numeral-prefixed chapter, section and episode markers at the
// start of a line: "第十二章 ...", "第3节", "第１２回", "Chapter 7", "episode 12".
// The rest of the marker's line becomes the segment title.
const DefaultPattern = `(?m)^[ \t]*(?:第[0-9０-９零〇一二三四五六七八九十百千万两]+[章节回集卷部篇话]|(?i:chapter|section|episode)[ \t]+[0-9]+)[^\n]*`

// Mark is a detected boundary: the byte offset where a segment starts and its title.
type Mark struct {
	Offset int
	Title  string
}

// CompilePattern compiles a boundary pattern. An empty expression selects DefaultPattern.
// It returns an error wrapping ErrInvalidPattern when the expression is malformed.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		expr = DefaultPattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return re, nil
}

// Split partitions text at every non-overlapping match of re.
func Split(text string, re *regexp.Regexp) []Segment {
	if text == "" {
		return nil
	}

	locs := re.FindAllStringIndex(text, -1)
	marks := make([]Mark, 0, len(locs))
	for _, loc := range locs {
		marks = append(marks, Mark{
			Offset: loc[0],
			Title:  strings.TrimSpace(text[loc[0]:loc[1]]),
		})
	}

	return Slice(text, marks)
}

// Slice cuts text at the given marks, which must be sorted by offset. Marks outside the text or
// not after the previous mark are ignored.
//
// With no usable marks the whole text becomes a single segment. Text before the first mark becomes
// a preamble segment when it is not blank. Segments that are blank after trimming are dropped,
// and ordinals are assigned afterwards so they stay contiguous.
func Slice(text string, marks []Mark) []Segment {
	if text == "" {
		return nil
	}

	bounds := make([]Mark, 0, len(marks))
	for _, m := range marks {
		if m.Offset < 0 || m.Offset > len(text) {
			continue
		}
		if len(bounds) > 0 && m.Offset <= bounds[len(bounds)-1].Offset {
			continue
		}
		bounds = append(bounds, m)
	}

	if len(bounds) == 0 {
		return wholeDocument(text)
	}

	segments := make([]Segment, 0, len(bounds)+1)
	if pre := strings.TrimSpace(text[:bounds[0].Offset]); pre != "" {
		segments = append(segments, Segment{Title: TitlePreamble, Content: pre})
	}

	for i, b := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1].Offset
		}
		content := strings.TrimSpace(text[b.Offset:end])
		if content == "" {
			continue
		}
		segments = append(segments, Segment{Title: b.Title, Content: content})
	}

	// Only blank text can lose every candidate.
	if len(segments) == 0 {
		return wholeDocument(text)
	}

	for i := range segments {
		segments[i].Ordinal = i
	}

	return segments
}

func wholeDocument(text string) []Segment {
	return []Segment{{
		Title:   TitleWholeDocument,
		Content: strings.TrimSpace(text),
		Ordinal: 0,
	}}
}
