package b2

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/nimbusb2/b2core/base"
)

// DownloadRequest describes one object to fetch. Exactly one of BucketName
// or FileID must be set: by-name downloads go through DownloadFileByName
// (bucket-scoped), by-id downloads through DownloadFileByID (spec §4.5,
// C.1 of SPEC_FULL.md). Sink must support WriteAt when the download is
// large enough to be chunked; a plain io.Writer is fine for single-shot
// downloads only.
type DownloadRequest struct {
	BucketName string
	FileName   string
	FileID     string
	Sink       io.Writer
	Progress   ProgressFunc
}

// Download drives the full download orchestration: part-parallel ranged
// GETs for files at or over the effective cutoff that are also larger than
// one part, single-shot for everything else (see useChunkedUpload).
// Spec §4.5.
func (s *Session) Download(ctx context.Context, req DownloadRequest) (*base.FileReader, error) {
	b, err := s.authorizedB2()
	if err != nil {
		return nil, err
	}

	absMin := int64(b.AbsoluteMinPartSize())
	recommended := int64(b.RecommendedPartSize())
	partSize := effectivePartSize(s.cfg.DownloadPartSize, recommended, absMin)
	cutoff := effectiveCutoff(s.cfg.DownloadCutoffSize, partSize, absMin)

	head, err := s.headDownload(ctx, b, req)
	if err != nil {
		return nil, err
	}

	if !useChunkedUpload(int64(head.ContentLength), cutoff, partSize) {
		return s.downloadSingleShot(ctx, b, req)
	}

	wa, ok := req.Sink.(io.WriterAt)
	if !ok {
		return nil, &base.Error{Kind: base.BadRequest, Message: "download exceeds cutoff; sink must support WriteAt for chunked download"}
	}
	return s.downloadChunked(ctx, b, req, head, wa, int64(head.ContentLength), partSize)
}

// headDownload discovers content length via a header-only request, per
// spec §4.5(1). The real HEAD semantics (no body fetched) come from
// base.Bucket.DownloadFileByName/base.B2.DownloadFileByID's header bool.
func (s *Session) headDownload(ctx context.Context, b *base.B2, req DownloadRequest) (*base.FileReader, error) {
	var fr *base.FileReader
	err := s.auth.Do(ctx, func(ctx context.Context, attempt int) error {
		var err error
		if req.FileID != "" {
			fr, err = b.DownloadFileByID(ctx, req.FileID, 0, 0, true)
		} else {
			fr, err = b.BucketNamed(req.BucketName).DownloadFileByName(ctx, req.FileName, 0, 0, true)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if fr.ReadCloser != nil {
		fr.ReadCloser.Close()
	}
	return fr, nil
}

func (s *Session) downloadSingleShot(ctx context.Context, b *base.B2, req DownloadRequest) (*base.FileReader, error) {
	var result *base.FileReader
	rewind := func() error { return nil } // a fresh request is issued per attempt

	op := func(ctx context.Context, attempt int) error {
		return s.downloadBulkhead.Do(ctx, func(ctx context.Context) error {
			var fr *base.FileReader
			var err error
			if req.FileID != "" {
				fr, err = b.DownloadFileByID(ctx, req.FileID, 0, 0, false)
			} else {
				fr, err = b.BucketNamed(req.BucketName).DownloadFileByName(ctx, req.FileName, 0, 0, false)
			}
			if err != nil {
				return err
			}
			defer fr.ReadCloser.Close()

			tracker := newProgressTracker(int64(fr.ContentLength), req.Progress)
			hr := newSHA1Reader(&countingReader{r: fr.ReadCloser, onRead: tracker.add})
			if _, err := io.Copy(req.Sink, hr); err != nil {
				return err
			}
			if fr.SHA1 != "" && fr.SHA1 != "none" && hr.sum() != fr.SHA1 {
				return &base.Error{Kind: base.InvalidHash, Message: fmt.Sprintf("sha1 mismatch: got %s want %s", hr.sum(), fr.SHA1)}
			}
			result = fr
			result.ReadCloser = nil
			return nil
		})
	}

	err := s.auth.Do(ctx, func(ctx context.Context, attempt int) error {
		return s.hash.Do(ctx, rewind, op)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) downloadChunked(ctx context.Context, b *base.B2, req DownloadRequest, head *base.FileReader, sink io.WriterAt, totalLength, partSize int64) (*base.FileReader, error) {
	parts, err := planRangeParts(totalLength, partSize)
	if err != nil {
		return nil, err
	}
	tracker := newProgressTracker(totalLength, req.Progress)

	var g errgroup.Group
	for _, part := range parts {
		part := part
		g.Go(func() error {
			return s.downloadRangePart(ctx, b, req, part, sink, tracker)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return head, nil
}

// downloadRangePart fetches one byte range with the full Auth -> Hash ->
// Bulkhead composition (spec §4.2) and writes it at its absolute offset,
// so completion order across parts never matters (spec §4.5(3)).
func (s *Session) downloadRangePart(ctx context.Context, b *base.B2, req DownloadRequest, part RangePart, sink io.WriterAt, tracker *progressTracker) error {
	rewind := func() error { return nil }

	op := func(ctx context.Context, attempt int) error {
		return s.downloadBulkhead.Do(ctx, func(ctx context.Context) error {
			var fr *base.FileReader
			var err error
			if req.FileID != "" {
				fr, err = b.DownloadFileByID(ctx, req.FileID, part.Position, part.Length, false)
			} else {
				fr, err = b.BucketNamed(req.BucketName).DownloadFileByName(ctx, req.FileName, part.Position, part.Length, false)
			}
			if err != nil {
				return err
			}
			defer fr.ReadCloser.Close()

			buf := make([]byte, part.Length)
			if _, err := io.ReadFull(fr.ReadCloser, buf); err != nil {
				return err
			}
			tracker.add(int64(len(buf)))

			if _, err := sink.WriteAt(buf, part.Position); err != nil {
				return err
			}
			return nil
		})
	}

	return s.auth.Do(ctx, func(ctx context.Context, attempt int) error {
		return s.hash.Do(ctx, rewind, op)
	})
}
