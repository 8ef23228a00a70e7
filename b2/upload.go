package b2

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/nimbusb2/b2core/base"
)

// UploadRequest describes one object to upload. Spec §4.4.
type UploadRequest struct {
	BucketID    string
	FileName    string
	ContentType string
	Info        map[string]string
	Source      io.Reader
	Progress    ProgressFunc
}

// Upload drives the full upload orchestration: large-file (chunked,
// part-parallel) for sources at or over the effective cutoff that are also
// larger than one part, single-shot for everything else (see
// useChunkedUpload). Spec §4.4.
func (s *Session) Upload(ctx context.Context, req UploadRequest) (*base.File, error) {
	b, err := s.authorizedB2()
	if err != nil {
		return nil, err
	}

	absMin := int64(b.AbsoluteMinPartSize())
	recommended := int64(b.RecommendedPartSize())
	partSize := effectivePartSize(s.cfg.UploadPartSize, recommended, absMin)
	cutoff := effectiveCutoff(s.cfg.UploadCutoffSize, partSize, absMin)

	src, err := resolveSource(req.Source, cutoff)
	if err != nil {
		return nil, err
	}

	if !useChunkedUpload(src.length, cutoff, partSize) {
		return s.uploadSingleShot(ctx, b, req, src)
	}
	return s.uploadLargeFile(ctx, b, req, src, partSize)
}

func (s *Session) uploadSingleShot(ctx context.Context, b *base.B2, req UploadRequest, src *source) (*base.File, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = "b2/x-auto"
	}
	tracker := newProgressTracker(src.length, req.Progress)

	var result *base.File
	op := func(ctx context.Context, attempt int) error {
		return s.uploadBulkhead.Do(ctx, func(ctx context.Context) error {
			sum, err := sha1Hex(src.section(0, src.length))
			if err != nil {
				return err
			}
			entry, err := s.uploadURLCache.Checkout(ctx, req.BucketID)
			if err != nil {
				return err
			}
			url := b.Bucket(req.BucketID).URLFrom(entry.UploadURL, entry.Token)
			body := &countingReader{r: src.section(0, src.length), onRead: tracker.add}
			file, err := url.UploadFile(ctx, body, int(src.length), req.FileName, contentType, sum, req.Info)
			if err != nil {
				s.uploadURLCache.Return(req.BucketID, entry, false)
				return err
			}
			s.uploadURLCache.Return(req.BucketID, entry, true)
			result = file
			return nil
		})
	}

	rewind := func() error { return nil } // section() above is re-read fresh every attempt
	err := s.auth.Do(ctx, func(ctx context.Context, attempt int) error {
		return s.hash.Do(ctx, rewind, op)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) uploadLargeFile(ctx context.Context, b *base.B2, req UploadRequest, src *source, partSize int64) (*base.File, error) {
	contentType := req.ContentType
	if contentType == "" {
		contentType = "b2/x-auto"
	}

	wholeSHA1, err := sha1Hex(src.section(0, src.length))
	if err != nil {
		return nil, err
	}
	info := make(map[string]string, len(req.Info)+1)
	for k, v := range req.Info {
		info[k] = v
	}
	info["large_file_sha1"] = wholeSHA1

	var lf *base.LargeFile
	err = s.auth.Do(ctx, func(ctx context.Context, attempt int) error {
		started, err := b.Bucket(req.BucketID).StartLargeFile(ctx, req.FileName, contentType, info)
		if err != nil {
			return err
		}
		lf = started
		return nil
	})
	if err != nil {
		return nil, err
	}

	parts, err := planParts(src.length, partSize)
	if err != nil {
		return nil, err
	}

	tracker := newProgressTracker(src.length, req.Progress)

	var g errgroup.Group
	for _, part := range parts {
		part := part
		g.Go(func() error {
			return s.uploadPart(ctx, lf, part, src, tracker)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result *base.File
	err = s.auth.Do(ctx, func(ctx context.Context, attempt int) error {
		finished, err := lf.FinishLargeFile(ctx)
		if err != nil {
			return err
		}
		result = finished
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// uploadPart uploads one part with the full Auth -> Hash -> Bulkhead
// composition (spec §4.2), checking out and returning a part URL from the
// fileId-keyed cache around each attempt.
func (s *Session) uploadPart(ctx context.Context, lf *base.LargeFile, part Part, src *source, tracker *progressTracker) error {
	rewind := func() error { return nil } // each attempt takes a fresh SectionReader

	op := func(ctx context.Context, attempt int) error {
		return s.uploadBulkhead.Do(ctx, func(ctx context.Context) error {
			sum, err := sha1Hex(src.section(part.Position, part.Length))
			if err != nil {
				return err
			}
			entry, err := s.partURLCache.Checkout(ctx, lf.ID)
			if err != nil {
				return err
			}
			chunk := lf.ChunkFrom(entry.UploadURL, entry.Token)
			body := &countingReader{r: src.section(part.Position, part.Length), onRead: tracker.add}
			_, err = chunk.UploadPart(ctx, body, sum, int(part.Length), part.Number)
			if err != nil {
				s.partURLCache.Return(lf.ID, entry, false)
				return err
			}
			s.partURLCache.Return(lf.ID, entry, true)
			return nil
		})
	}

	return s.auth.Do(ctx, func(ctx context.Context, attempt int) error {
		return s.hash.Do(ctx, rewind, op)
	})
}

// countingReader reports bytes as they're read, driving progress events
// from the same goroutine that's doing the I/O (spec §5).
type countingReader struct {
	r      io.Reader
	onRead func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.onRead != nil {
		c.onRead(int64(n))
	}
	return n, err
}
