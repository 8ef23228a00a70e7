package b2

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"io"

	"github.com/nimbusb2/b2core/base"
)

// source is what the orchestrator needs of a caller-supplied stream: random
// access (so concurrent part uploads and hash-retry rewinds are just a
// fresh io.SectionReader, never a second pass over a shared cursor) plus a
// known length.
type source struct {
	readerAt io.ReaderAt
	length   int64
}

// resolveSource implements spec §4.4(1): a seekable/random-access stream
// carries its own length; anything else is buffered in full, which is only
// acceptable when the result is still within cutoff (large uploads require
// a real seekable source for whole-file SHA1 and hash-retry rewinds).
func resolveSource(r io.Reader, cutoff int64) (*source, error) {
	if ra, ok := r.(io.ReaderAt); ok {
		if sk, ok := r.(io.Seeker); ok {
			length, err := sk.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, err
			}
			if _, err := sk.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
			return &source{readerAt: ra, length: length}, nil
		}
	}
	buf, err := io.ReadAll(io.LimitReader(r, cutoff+1))
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) > cutoff {
		return nil, &base.Error{
			Kind:    base.BadRequest,
			Message: "source is not seekable and exceeds the upload cutoff; large uploads require a seekable, randomly-readable stream",
		}
	}
	return &source{readerAt: bytes.NewReader(buf), length: int64(len(buf))}, nil
}

// section returns a fresh, independently-readable view of [pos, pos+n).
// Being freshly constructed each call is what makes hash-retry "rewind"
// and concurrent per-part reads trivial: there's no shared cursor to race
// on or reset.
func (s *source) section(pos, n int64) io.Reader {
	return io.NewSectionReader(s.readerAt, pos, n)
}

func sha1Hex(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// sha1Reader wraps r, accumulating a running SHA1 of everything read
// through it; used to verify downloaded bytes against the service's
// advertised X-Bz-Content-Sha1 (spec §4.5 Integrity) without a second pass.
type sha1Reader struct {
	r io.Reader
	h hash.Hash
	n int64
}

func newSHA1Reader(r io.Reader) *sha1Reader {
	return &sha1Reader{r: r, h: sha1.New()}
}

func (s *sha1Reader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.h.Write(p[:n])
		s.n += int64(n)
	}
	return n, err
}

func (s *sha1Reader) sum() string {
	return hex.EncodeToString(s.h.Sum(nil))
}
