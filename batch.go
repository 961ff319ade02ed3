package longdoc

import "strings"

// BatchSeparator joins member segment contents inside a batch.
const BatchSeparator = "\n\n"

// Batches groups segments into consecutive runs of batchSize, preserving ordinal order.
// The last batch may be shorter. A batchSize below 1 is treated as 1.
func Batches(segments []Segment, batchSize int) []Batch {
	if len(segments) == 0 {
		return nil
	}
	size := clampBatchSize(batchSize)

	batches := make([]Batch, 0, BatchCount(len(segments), size))
	for start := 0; start < len(segments); start += size {
		end := min(start+size, len(segments))
		members := segments[start:end]

		contents := make([]string, len(members))
		for i, seg := range members {
			contents[i] = seg.Content
		}

		batches = append(batches, Batch{
			Index:   len(batches),
			Label:   BatchLabel(members),
			Content: strings.TrimSpace(strings.Join(contents, BatchSeparator)),
			First:   members[0].Ordinal,
			Last:    members[len(members)-1].Ordinal,
		})
	}

	return batches
}

// BatchAt returns the batch at index from Batches(segments, batchSize).
// It reports false when index is outside [0, BatchCount).
func BatchAt(segments []Segment, batchSize, index int) (Batch, bool) {
	batches := Batches(segments, batchSize)
	if index < 0 || index >= len(batches) {
		return Batch{}, false
	}
	return batches[index], true
}

// BatchCount returns ceil(segmentCount / batchSize) with batchSize clamped to at least 1.
func BatchCount(segmentCount, batchSize int) int {
	if segmentCount <= 0 {
		return 0
	}
	size := clampBatchSize(batchSize)
	return (segmentCount + size - 1) / size
}

// BatchLabel is the first member's title for a single-member batch and "first ~ last" otherwise.
// Titles are used verbatim.
func BatchLabel(members []Segment) string {
	switch len(members) {
	case 0:
		return ""
	case 1:
		return members[0].Title
	default:
		return members[0].Title + " ~ " + members[len(members)-1].Title
	}
}

func clampBatchSize(size int) int {
	if size < 1 {
		return 1
	}
	return size
}
