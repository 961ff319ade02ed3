package longdoc_test

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"

	longdoc "github.com/MegaGrindStone/go-longdoc"
)

func defaultPattern(t *testing.T) *regexp.Regexp {
	t.Helper()
	re, err := longdoc.CompilePattern("")
	if err != nil {
		t.Fatalf("CompilePattern(\"\") error = %v", err)
	}
	return re
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []longdoc.Segment
	}{
		{
			name:     "Empty text",
			text:     "",
			expected: nil,
		},
		{
			name: "No markers",
			text: "hello\nworld",
			expected: []longdoc.Segment{
				{Title: longdoc.TitleWholeDocument, Content: "hello\nworld", Ordinal: 0},
			},
		},
		{
			name: "Chinese chapters",
			text: "第一章 Intro\nA\n第二章 Body\nB\n第三章 End\nC",
			expected: []longdoc.Segment{
				{Title: "第一章 Intro", Content: "第一章 Intro\nA", Ordinal: 0},
				{Title: "第二章 Body", Content: "第二章 Body\nB", Ordinal: 1},
				{Title: "第三章 End", Content: "第三章 End\nC", Ordinal: 2},
			},
		},
		{
			name: "Preamble before first marker",
			text: "Preface text\n第一章 Start\nBody",
			expected: []longdoc.Segment{
				{Title: longdoc.TitlePreamble, Content: "Preface text", Ordinal: 0},
				{Title: "第一章 Start", Content: "第一章 Start\nBody", Ordinal: 1},
			},
		},
		{
			name: "Blank preamble is not synthesized",
			text: "\n\n  \n第一章 A\nx",
			expected: []longdoc.Segment{
				{Title: "第一章 A", Content: "第一章 A\nx", Ordinal: 0},
			},
		},
		{
			name: "Whitespace only text",
			text: " \n\t ",
			expected: []longdoc.Segment{
				{Title: longdoc.TitleWholeDocument, Content: "", Ordinal: 0},
			},
		},
		{
			name: "English markers in any case",
			text: "Chapter 1: Begin\nfoo\n\nchapter 2\nbar\nEPISODE 3 finale\nbaz",
			expected: []longdoc.Segment{
				{Title: "Chapter 1: Begin", Content: "Chapter 1: Begin\nfoo", Ordinal: 0},
				{Title: "chapter 2", Content: "chapter 2\nbar", Ordinal: 1},
				{Title: "EPISODE 3 finale", Content: "EPISODE 3 finale\nbaz", Ordinal: 2},
			},
		},
		{
			name: "Mid-line mention is not a boundary",
			text: "He read 第一章 yesterday.\nThen slept.",
			expected: []longdoc.Segment{
				{Title: longdoc.TitleWholeDocument, Content: "He read 第一章 yesterday.\nThen slept.", Ordinal: 0},
			},
		},
		{
			name: "Full-width and Arabic numerals",
			text: "第１２回 Twelve\nx\n  第13节 Thirteen\ny",
			expected: []longdoc.Segment{
				{Title: "第１２回 Twelve", Content: "第１２回 Twelve\nx", Ordinal: 0},
				{Title: "第13节 Thirteen", Content: "第13节 Thirteen\ny", Ordinal: 1},
			},
		},
		{
			name: "Markers without bodies",
			text: "第一章\n第二章\n",
			expected: []longdoc.Segment{
				{Title: "第一章", Content: "第一章", Ordinal: 0},
				{Title: "第二章", Content: "第二章", Ordinal: 1},
			},
		},
	}

	re := defaultPattern(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := longdoc.Split(tt.text, re)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Split() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestSplit_CustomPattern(t *testing.T) {
	re, err := longdoc.CompilePattern(`(?m)^## .*$`)
	if err != nil {
		t.Fatalf("CompilePattern() error = %v", err)
	}

	got := longdoc.Split("# Book\n\n## One\nfirst\n\n## Two\nsecond\n", re)
	want := []longdoc.Segment{
		{Title: longdoc.TitlePreamble, Content: "# Book", Ordinal: 0},
		{Title: "## One", Content: "## One\nfirst", Ordinal: 1},
		{Title: "## Two", Content: "## Two\nsecond", Ordinal: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %#v, want %#v", got, want)
	}
}

func TestSplit_Properties(t *testing.T) {
	texts := []string{
		"a",
		"   leading and trailing   ",
		"第一章 A\n\n\n第二章 B\n\n",
		"intro\n第一章\n\n第二章 x\ny\nz\n第三章",
		strings.Repeat("第十章 loop\nline one\nline two\n\n", 40),
		"text\r\n第二回 crlf\r\nbody\r\n",
		"Section 9\nOnly one section here.",
	}

	re := defaultPattern(t)
	for _, text := range texts {
		segments := longdoc.Split(text, re)

		if len(segments) == 0 {
			t.Fatalf("Split(%q) returned no segments for non-empty text", text)
		}
		for i, seg := range segments {
			if seg.Ordinal != i {
				t.Errorf("Split(%q)[%d].Ordinal = %d", text, i, seg.Ordinal)
			}
		}

		// Every non-whitespace byte survives exactly once.
		var joined strings.Builder
		for _, seg := range segments {
			joined.WriteString(seg.Content)
		}
		if stripSpace(joined.String()) != stripSpace(text) {
			t.Errorf("Split(%q) lost or duplicated content: %q", text, joined.String())
		}

		if again := longdoc.Split(text, re); !reflect.DeepEqual(segments, again) {
			t.Errorf("Split(%q) is not deterministic", text)
		}
	}
}

func TestSplit_NoMatchKeepsTrimmedText(t *testing.T) {
	re := regexp.MustCompile(`NEVER-MATCHES-\d{40}`)
	for _, text := range []string{"x", "  a\nb  ", "\n\nlonger text\nwith lines\n"} {
		segments := longdoc.Split(text, re)
		if len(segments) != 1 {
			t.Fatalf("Split(%q) returned %d segments, want 1", text, len(segments))
		}
		if segments[0].Content != strings.TrimSpace(text) {
			t.Errorf("Split(%q) content = %q", text, segments[0].Content)
		}
		if segments[0].Title != longdoc.TitleWholeDocument {
			t.Errorf("Split(%q) title = %q", text, segments[0].Title)
		}
	}
}

func TestSlice(t *testing.T) {
	text := "pre\nAAA\nBBB\nCCC"

	tests := []struct {
		name     string
		marks    []longdoc.Mark
		expected []longdoc.Segment
	}{
		{
			name:  "No marks",
			marks: nil,
			expected: []longdoc.Segment{
				{Title: longdoc.TitleWholeDocument, Content: text},
			},
		},
		{
			name: "Out of range and unordered marks are ignored",
			marks: []longdoc.Mark{
				{Offset: 4, Title: "A"},
				{Offset: 2, Title: "backwards"},
				{Offset: 4, Title: "duplicate"},
				{Offset: 12, Title: "C"},
				{Offset: 99, Title: "outside"},
			},
			expected: []longdoc.Segment{
				{Title: longdoc.TitlePreamble, Content: "pre", Ordinal: 0},
				{Title: "A", Content: "AAA\nBBB", Ordinal: 1},
				{Title: "C", Content: "CCC", Ordinal: 2},
			},
		},
		{
			name: "Mark at end of text yields nothing",
			marks: []longdoc.Mark{
				{Offset: 0, Title: "all"},
				{Offset: len(text), Title: "end"},
			},
			expected: []longdoc.Segment{
				{Title: "all", Content: text, Ordinal: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := longdoc.Slice(text, tt.marks)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Slice() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestCompilePattern_Invalid(t *testing.T) {
	_, err := longdoc.CompilePattern("(unclosed")
	if !errors.Is(err, longdoc.ErrInvalidPattern) {
		t.Fatalf("CompilePattern() error = %v, want ErrInvalidPattern", err)
	}
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
