package longdoc

import (
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/MegaGrindStone/go-longdoc/internal"
	"github.com/cespare/xxhash"
	"github.com/google/uuid"
)

// SessionOptions configures a Session.
type SessionOptions struct {
	// BatchSize is the number of segments per batch every load starts with. Zero selects
	// DefaultBatchSize and negative values are raised to 1.
	BatchSize int
	// Policy, when set, is consulted before a document is accepted.
	Policy Policy
}

// Session binds one loaded document to its segmentation and batching.
//
// A Session is not safe for concurrent use; the host must serialize calls, in particular around
// Load, so that no reader observes a half-replaced segment list.
type Session struct {
	segmenter Segmenter
	policy    Policy
	loadSize  int
	batchSize int
	logger    *slog.Logger

	loaded      bool
	id          string
	name        string
	text        string
	fingerprint string
	splitKey    string
	segments    []Segment
}

// LoadResult reports the outcome of Session.Load. On failure OK is false and Reason holds a
// human-readable explanation; Err carries the underlying error for errors.Is checks.
type LoadResult struct {
	OK         bool
	Reason     string
	Err        error
	Name       string
	Segments   int
	Characters int
}

// Summary holds values derived from the current session state.
type Summary struct {
	Segments   int
	Batches    int
	BatchSize  int
	Characters int
	Lines      int
}

// NewSession creates an unloaded Session that segments documents with segmenter.
func NewSession(segmenter Segmenter, opts SessionOptions, logger *slog.Logger) *Session {
	size := opts.BatchSize
	if size == 0 {
		size = DefaultBatchSize
	}
	size = clampBatchSize(size)
	return &Session{
		segmenter: segmenter,
		policy:    opts.Policy,
		loadSize:  size,
		batchSize: size,
		logger:    orDiscard(logger).With(slog.String("package", "longdoc")),
	}
}

// Load replaces the session's document. Prior state is discarded before the new document is
// validated and segmented, so a failed load leaves the session unloaded. The batch size returns to
// the one the session was created with.
func (s *Session) Load(doc Document) (result LoadResult) {
	s.Clear()

	logger := s.logger.With(slog.String("function", "Load"), slog.String("name", doc.Name))

	defer func() {
		if r := recover(); r != nil {
			s.Clear()
			err := fmt.Errorf("segmenter panicked: %v", r)
			logger.Error("Load failed", "error", err)
			result = failed(doc.Name, err)
		}
	}()

	if s.segmenter == nil {
		err := fmt.Errorf("%w: no segmenter configured", ErrInvalidPattern)
		logger.Warn("Load rejected", "error", err)
		return failed(doc.Name, err)
	}

	if s.policy != nil {
		if err := s.policy.Accept(doc); err != nil {
			logger.Warn("Document rejected by policy", "error", err)
			return failed(doc.Name, err)
		}
	}

	segments, err := s.segmenter.Segments(doc.Content)
	if err != nil {
		logger.Warn("Segmentation failed", "error", err)
		return failed(doc.Name, fmt.Errorf("failed to segment document: %w", err))
	}

	s.loaded = true
	s.id = uuid.NewString()
	s.name = doc.Name
	s.text = doc.Content
	s.fingerprint = strconv.FormatUint(xxhash.Sum64String(doc.Content), 16)
	s.segments = segments
	s.splitKey = splitKey(s.fingerprint, segments)

	chars := utf8.RuneCountInString(doc.Content)
	logger.Info("Document loaded",
		"id", s.id,
		"segments", len(segments),
		"batches", BatchCount(len(segments), s.batchSize),
		"characters", chars,
	)

	return LoadResult{
		OK:         true,
		Name:       doc.Name,
		Segments:   len(segments),
		Characters: chars,
	}
}

// LoadFile acquires a document through r and loads it. A read failure is reported in the result
// and leaves the session unloaded.
func (s *Session) LoadFile(r Reader, path string) LoadResult {
	doc, err := r.Read(path)
	if err != nil {
		s.Clear()
		s.logger.Warn("Failed to read document",
			slog.String("function", "LoadFile"), slog.String("path", path), "error", err)
		return failed(path, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return s.Load(doc)
}

// Clear discards the loaded document and its segments and restores the initial batch size.
func (s *Session) Clear() {
	s.loaded = false
	s.id = ""
	s.name = ""
	s.text = ""
	s.fingerprint = ""
	s.splitKey = ""
	s.segments = nil
	s.batchSize = s.loadSize
}

// Resplit segments the loaded source again with a different segmenter. On error the previous
// segmenter and segments are kept.
func (s *Session) Resplit(segmenter Segmenter) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if segmenter == nil {
		return fmt.Errorf("%w: no segmenter configured", ErrInvalidPattern)
	}

	segments, err := segmenter.Segments(s.text)
	if err != nil {
		return fmt.Errorf("failed to segment document: %w", err)
	}

	s.segmenter = segmenter
	s.segments = segments
	s.splitKey = splitKey(s.fingerprint, segments)

	s.logger.Info("Document resplit", slog.String("function", "Resplit"), "segments", len(segments))

	return nil
}

// SetBatchSize changes the number of segments per batch until the next load. Values below 1 are
// raised to 1.
func (s *Session) SetBatchSize(size int) {
	s.batchSize = clampBatchSize(size)
}

// BatchSize returns the number of segments per batch.
func (s *Session) BatchSize() int {
	return s.batchSize
}

// Loaded reports whether a document is loaded.
func (s *Session) Loaded() bool {
	return s.loaded
}

// ID identifies the current load. It changes on every successful Load.
func (s *Session) ID() string {
	return s.id
}

// Name returns the loaded document's name.
func (s *Session) Name() string {
	return s.name
}

// Text returns the loaded source text, unmodified.
func (s *Session) Text() string {
	return s.text
}

// Fingerprint is a hex xxhash of the loaded source text. Identical texts share a fingerprint.
func (s *Session) Fingerprint() string {
	return s.fingerprint
}

// SplitKey identifies the loaded text together with its segment boundaries. It changes when a
// Resplit moves the boundaries but not when only the batch size changes.
func (s *Session) SplitKey() string {
	return s.splitKey
}

// Segments returns a copy of the current segments.
func (s *Session) Segments() []Segment {
	if len(s.segments) == 0 {
		return nil
	}
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Batches returns the batches of the current segments.
func (s *Session) Batches() []Batch {
	return Batches(s.segments, s.batchSize)
}

// Batch returns the batch at index.
func (s *Session) Batch(index int) (Batch, bool) {
	return BatchAt(s.segments, s.batchSize, index)
}

// ContentForSending returns the body text to transmit. A negative index selects the entire
// source text, bypassing batching. Otherwise it is the content of the batch at index, which never
// includes the batch label. It reports false when nothing is loaded or the batch does not exist.
func (s *Session) ContentForSending(index int) (string, bool) {
	if !s.loaded {
		return "", false
	}
	if index < 0 {
		return s.text, true
	}
	b, ok := s.Batch(index)
	if !ok {
		return "", false
	}
	return b.Content, true
}

// EstimateTokens estimates the token count of what ContentForSending(index) would return.
func (s *Session) EstimateTokens(index int) (int, error) {
	content, ok := s.ContentForSending(index)
	if !ok {
		if !s.loaded {
			return 0, ErrNotLoaded
		}
		return 0, fmt.Errorf("batch %d out of range", index)
	}
	return internal.CountTokens(content)
}

// Summary returns counts derived from the current state.
func (s *Session) Summary() Summary {
	return Summary{
		Segments:   len(s.segments),
		Batches:    BatchCount(len(s.segments), s.batchSize),
		BatchSize:  s.batchSize,
		Characters: utf8.RuneCountInString(s.text),
		Lines:      countLines(s.text),
	}
}

// Info describes the loaded document's size.
func (s *Session) Info() string {
	if !s.loaded {
		return "no document loaded"
	}
	sum := s.Summary()
	return fmt.Sprintf("%s: %d characters, %d lines", s.name, sum.Characters, sum.Lines)
}

// SplitInfo describes how the document is segmented and batched.
func (s *Session) SplitInfo() string {
	sum := s.Summary()
	return fmt.Sprintf("%d segments in %d batches (up to %d per batch)", sum.Segments, sum.Batches, sum.BatchSize)
}

// Describe returns a display line for the batch at index, such as "Batch 1/3: 第一章 ~ 第五章".
// The line is for display only and is never part of the batch content.
func (s *Session) Describe(index int) (string, bool) {
	b, ok := s.Batch(index)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Batch %d/%d: %s", b.Index+1, BatchCount(len(s.segments), s.batchSize), b.Label), true
}

func failed(name string, err error) LoadResult {
	return LoadResult{
		OK:     false,
		Reason: err.Error(),
		Err:    err,
		Name:   name,
	}
}

func splitKey(fingerprint string, segments []Segment) string {
	d := xxhash.New()
	for _, seg := range segments {
		_, _ = d.Write([]byte(seg.Title))
		_, _ = d.Write([]byte{0})
		_, _ = d.Write([]byte(strconv.Itoa(len(seg.Content))))
		_, _ = d.Write([]byte{0})
	}
	return fingerprint + "-" + strconv.FormatUint(d.Sum64(), 16)
}
