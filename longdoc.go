package longdoc

import (
	"errors"
	"log/slog"
	"strings"
)

// Segmenter turns a document's content into an ordered sequence of segments.
// Implementations must be deterministic: the same content always yields the same segments.
type Segmenter interface {
	// Segments splits content at its structural boundaries. It returns an empty slice for
	// empty content and at least one segment for any non-empty content. A malformed
	// boundary configuration is reported as an error wrapping ErrInvalidPattern.
	Segments(content string) ([]Segment, error)
}

// Reader is the file access collaborator. It acquires a document's text, already decoded,
// before the document is handed to a Session.
type Reader interface {
	Read(path string) (Document, error)
}

// Policy decides whether a document is acceptable for loading.
type Policy interface {
	Accept(doc Document) error
}

// LLM defines the interface for the downstream chat endpoint that batches are dispatched to.
type LLM interface {
	// Chat sends messages to the LLM and returns the response.
	// A message with an even index is guaranteed to be sent by the user, while the odd index is
	// sent by the assistant.
	Chat(messages []string) (string, error)
}

// ProgressStore remembers how far a document's dispatch has gone, so an interrupted run
// can resume from the next unsent batch.
type ProgressStore interface {
	// Progress returns the ordinal of the next segment to send for docID, or ErrProgressNotFound.
	Progress(docID string) (int, error)
	SaveProgress(docID string, next int) error
	// ResetProgress forgets docID. Resetting an unknown docID is not an error.
	ResetProgress(docID string) error
}

// Document is a named piece of text to be loaded into a Session.
type Document struct {
	Name    string
	Content string
}

// Segment represents one structurally delimited unit of a document, such as a chapter.
type Segment struct {
	Title   string
	Content string
	Ordinal int
}

// Batch is a group of consecutive segments bundled for a single outbound transmission.
// First and Last are the inclusive ordinal range of its member segments.
type Batch struct {
	Index   int
	Label   string
	Content string
	First   int
	Last    int
}

// Size returns the number of member segments.
func (b Batch) Size() int {
	return b.Last - b.First + 1
}

const (
	// TitlePreamble is the title of the synthesized segment holding text before the first marker.
	TitlePreamble = "preamble"
	// TitleWholeDocument is the title of the single segment produced when no marker matches.
	TitleWholeDocument = "whole document"

	// DefaultBatchSize is the number of segments per batch when none is configured.
	DefaultBatchSize = 5
)

var (
	// ErrInvalidPattern is returned when a boundary pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid boundary pattern")
	// ErrUnsupportedType is returned when a document's file type is not accepted.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrTooLarge is returned when a document exceeds the accepted size.
	ErrTooLarge = errors.New("document too large")
	// ErrEmptyDocument is returned by policies that refuse documents without content.
	ErrEmptyDocument = errors.New("empty document")
	// ErrNotLoaded is returned when an operation needs a loaded document.
	ErrNotLoaded = errors.New("no document loaded")
	// ErrProgressNotFound is returned by a ProgressStore that has no entry for a document.
	ErrProgressNotFound = errors.New("progress not found")
	// ErrCorruptProgress is returned when a stored progress entry cannot be a valid position.
	ErrCorruptProgress = errors.New("corrupt progress entry")
)

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1
}
