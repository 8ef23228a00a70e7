package b2

import "fmt"

// Part is one entry of an upload part plan: a contiguous, non-overlapping
// byte range of the source stream. Spec §3, invariant §8.1.
type Part struct {
	Number   int   // 1-based
	Position int64 // byte offset into the source
	Length   int64
}

// RangePart is one entry of a download part plan: a byte range to request
// with a Range header, and the offset in the destination sink to write it
// at. Spec §4.5.
type RangePart struct {
	Number   int
	Position int64
	Length   int64
}

// effectivePartSize implements spec §4.4(2): partSize(x) = recommended if
// x == 0, else max(x, absMin).
func effectivePartSize(configured, recommended, absMin int64) int64 {
	if configured == 0 {
		return recommended
	}
	if configured < absMin {
		return absMin
	}
	return configured
}

// effectiveCutoff implements spec §4.4(2): cutoff(x) = partSize if x == 0,
// else max(x, absMin).
func effectiveCutoff(configuredCutoff, partSize, absMin int64) int64 {
	if configuredCutoff == 0 {
		return partSize
	}
	if configuredCutoff < absMin {
		return absMin
	}
	return configuredCutoff
}

// useChunkedUpload decides single-shot vs. large-file per spec §4.4(3) as
// corrected by §9's open question: chunked only when the stream clears
// both the configured cutoff and the part size itself, so a stream that's
// merely ≥ cutoff but still ≤ one part never produces a degenerate
// single-part "large file".
func useChunkedUpload(totalLength, cutoff, partSize int64) bool {
	return totalLength >= cutoff && totalLength > partSize
}

// planParts covers [0, totalLength) with contiguous, non-overlapping parts
// of at most partSize bytes (the last may be shorter). It is used both for
// upload part planning (GetStreamParts) and download range planning
// (GetContentParts); the spec defines the same coverage shape for both.
//
// Precondition: totalLength > partSize > 0 (callers route totalLength <=
// partSize to the single-shot/whole-body path instead; see
// useChunkedUpload and the download cutoff check in download.go).
func planParts(totalLength, partSize int64) ([]Part, error) {
	if totalLength <= 0 {
		return nil, fmt.Errorf("b2: cannot plan parts for non-positive length %d", totalLength)
	}
	if partSize <= 0 {
		return nil, fmt.Errorf("b2: cannot plan parts with non-positive part size %d", partSize)
	}
	n := (totalLength + partSize - 1) / partSize
	parts := make([]Part, 0, n)
	var pos int64
	for i := int64(0); i < n; i++ {
		length := partSize
		if pos+length > totalLength {
			length = totalLength - pos
		}
		parts = append(parts, Part{
			Number:   int(i) + 1,
			Position: pos,
			Length:   length,
		})
		pos += length
	}
	return parts, nil
}

// planRangeParts is planParts with RangePart's shape, used for download
// fan-out (spec §4.5(3)).
func planRangeParts(totalLength, partSize int64) ([]RangePart, error) {
	parts, err := planParts(totalLength, partSize)
	if err != nil {
		return nil, err
	}
	out := make([]RangePart, len(parts))
	for i, p := range parts {
		out[i] = RangePart{Number: p.Number, Position: p.Position, Length: p.Length}
	}
	return out, nil
}
