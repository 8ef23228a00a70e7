package b2

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeB2 is a minimal in-memory b2_* endpoint set standing in for the real
// service, the way the out-of-process HTTP contract in spec §6 implies
// tests should exercise the orchestrator without a live account.
type fakeB2 struct {
	mu    sync.Mutex
	files map[string][]byte // by name, single-shot + finished large files
	large map[string]map[int][]byte
	srv   *httptest.Server
}

func newFakeB2(t *testing.T, partSize int) *fakeB2 {
	f := &fakeB2{files: map[string][]byte{}, large: map[string]map[int][]byte{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/b2api/v3/b2_authorize_account", f.authorize(partSize))
	mux.HandleFunc("/b2api/v3/b2_get_upload_url", f.getUploadURL)
	mux.HandleFunc("/b2api/v3/b2_start_large_file", f.startLargeFile)
	mux.HandleFunc("/b2api/v3/b2_get_upload_part_url", f.getUploadPartURL)
	mux.HandleFunc("/b2api/v3/b2_finish_large_file", f.finishLargeFile)
	mux.HandleFunc("/upload", f.uploadFile)
	mux.HandleFunc("/upload_part", f.uploadPart)
	mux.HandleFunc("/file/", f.download)
	mux.HandleFunc("/b2api/v3/b2_download_file_by_id", f.downloadByID)
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeB2) authorize(partSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"accountId":         "acct1",
			"authorizationToken": "authtok",
			"apiInfo": map[string]interface{}{
				"storageApi": map[string]interface{}{
					"absoluteMinimumPartSize": 1,
					"apiUrl":                  f.srv.URL,
					"downloadUrl":             f.srv.URL,
					"recommendedPartSize":     partSize,
					"capabilities":            []string{"readFiles", "writeFiles"},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func (f *fakeB2) getUploadURL(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"uploadUrl":          f.srv.URL + "/upload",
		"authorizationToken": "uptok",
	})
}

func (f *fakeB2) uploadFile(w http.ResponseWriter, r *http.Request) {
	name := r.Header.Get("X-Bz-File-Name")
	body := readAll(r)
	f.mu.Lock()
	f.files[name] = body
	f.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"fileId":        "file-" + name,
		"fileName":      name,
		"contentLength": len(body),
		"action":        "upload",
		"uploadTimestamp": 0,
	})
}

func (f *fakeB2) startLargeFile(w http.ResponseWriter, r *http.Request) {
	var req struct{ Name string `json:"fileName"` }
	json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	f.large[req.Name] = map[int][]byte{}
	f.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]string{"fileId": req.Name})
}

func (f *fakeB2) getUploadPartURL(w http.ResponseWriter, r *http.Request) {
	var req struct{ ID string `json:"fileId"` }
	json.NewDecoder(r.Body).Decode(&req)
	json.NewEncoder(w).Encode(map[string]string{
		"uploadUrl":          f.srv.URL + "/upload_part?fileId=" + req.ID,
		"authorizationToken": "parttok",
	})
}

func (f *fakeB2) uploadPart(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	n, _ := strconv.Atoi(r.Header.Get("X-Bz-Part-Number"))
	body := readAll(r)
	f.mu.Lock()
	f.large[fileID][n] = body
	f.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]interface{}{"fileId": fileID, "partNumber": n, "contentLength": len(body)})
}

func (f *fakeB2) finishLargeFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string   `json:"fileId"`
		Hashes []string `json:"partSha1Array"`
	}
	json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	parts := f.large[req.ID]
	var buf bytes.Buffer
	for i := 1; i <= len(parts); i++ {
		buf.Write(parts[i])
	}
	f.files[req.ID] = buf.Bytes()
	f.mu.Unlock()
	json.NewEncoder(w).Encode(map[string]interface{}{"fileId": req.ID, "fileName": req.ID, "action": "upload"})
}

func (f *fakeB2) download(w http.ResponseWriter, r *http.Request) {
	segs := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/file/"), "/", 2)
	name := segs[len(segs)-1]
	f.mu.Lock()
	body, ok := f.files[name]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(404)
		return
	}
	f.serveRanged(w, r, body)
}

func (f *fakeB2) downloadByID(w http.ResponseWriter, r *http.Request) {
	var req struct{ FileID string `json:"fileId"` }
	json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	body, ok := f.files[req.FileID]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(404)
		return
	}
	f.serveRanged(w, r, body)
}

func (f *fakeB2) serveRanged(w http.ResponseWriter, r *http.Request, body []byte) {
	sum := sha1.Sum(body)
	w.Header().Set("X-Bz-Content-Sha1", hex.EncodeToString(sum[:]))
	w.Header().Set("X-Bz-File-Id", "fid")

	rng := r.Header.Get("Range")
	status := 200
	out := body
	if rng != "" {
		var start, end int64
		fmt.Sscanf(rng, "bytes=%d-%d", &start, &end)
		if end >= int64(len(body)) {
			end = int64(len(body)) - 1
		}
		out = body[start : end+1]
		status = 206
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(out)
	}
}

func readAll(r *http.Request) []byte {
	buf := &bytes.Buffer{}
	buf.ReadFrom(r.Body)
	return buf.Bytes()
}

func newTestSession(t *testing.T, f *fakeB2, cfg Config) *Session {
	cfg.APIBase = f.srv.URL
	s := NewSession("id", "key", cfg)
	require.NoError(t, s.Connect(context.Background()))
	return s
}

func TestUploadDownloadSingleShotRoundTrip(t *testing.T) {
	f := newFakeB2(t, 1<<20)
	s := newTestSession(t, f, Config{})

	payload := bytes.Repeat([]byte("hello world "), 100)
	file, err := s.Upload(context.Background(), UploadRequest{
		BucketID: "bucket1",
		FileName: "greeting.txt",
		Source:   bytes.NewReader(payload),
	})
	require.NoError(t, err)
	assert.Equal(t, "greeting.txt", file.Name)

	var out bytes.Buffer
	fr, err := s.Download(context.Background(), DownloadRequest{
		BucketName: "bucket1",
		FileName:   "greeting.txt",
		Sink:       &out,
	})
	require.NoError(t, err)
	assert.Equal(t, payload, out.Bytes())
	assert.NotEmpty(t, fr.SHA1)
}

func TestUploadChunkedRoundTrip(t *testing.T) {
	const partSize = 1000
	f := newFakeB2(t, partSize)
	s := newTestSession(t, f, Config{UploadPartSize: partSize, UploadCutoffSize: partSize})

	payload := bytes.Repeat([]byte("x"), partSize*3+250)
	file, err := s.Upload(context.Background(), UploadRequest{
		BucketID: "bucket1",
		FileName: "bigfile.bin",
		Source:   bytes.NewReader(payload),
	})
	require.NoError(t, err)
	require.NotEmpty(t, file.ID)

	f.mu.Lock()
	assembled := f.files[file.ID]
	f.mu.Unlock()
	assert.Equal(t, payload, assembled, "parts must reassemble in order without gaps or overlap")
}

func TestDownloadChunkedRoundTrip(t *testing.T) {
	const partSize = 1000
	f := newFakeB2(t, partSize)
	s := newTestSession(t, f, Config{
		UploadPartSize:     partSize,
		UploadCutoffSize:   partSize,
		DownloadPartSize:   partSize,
		DownloadCutoffSize: partSize,
	})

	payload := bytes.Repeat([]byte("r"), partSize*3+250)
	file, err := s.Upload(context.Background(), UploadRequest{
		BucketID: "bucket1",
		FileName: "chunked-download.bin",
		Source:   bytes.NewReader(payload),
	})
	require.NoError(t, err)
	require.NotEmpty(t, file.ID)

	out := make([]byte, len(payload))
	sink := &bytesWriterAt{buf: out}

	var lastReported int64
	_, err = s.Download(context.Background(), DownloadRequest{
		BucketName: "bucket1",
		FileName:   file.Name,
		Sink:       sink,
		Progress: func(p Progress) {
			lastReported = p.BytesTransferred
		},
	})
	require.NoError(t, err)
	assert.Equal(t, payload, out, "range parts must land at their absolute offsets regardless of completion order")
	assert.Equal(t, int64(len(payload)), lastReported)
}

// bytesWriterAt adapts a plain byte slice to io.WriterAt so concurrent range
// parts can each write to their own offset without serializing on a buffer.
// Its Write method only exists so it fits DownloadRequest.Sink (an
// io.Writer); it always fails, since only the chunked path's WriteAt is used.
type bytesWriterAt struct {
	mu  sync.Mutex
	buf []byte
}

func (w *bytesWriterAt) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("bytesWriterAt: sequential Write is not supported")
}

func (w *bytesWriterAt) WriteAt(p []byte, off int64) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := copy(w.buf[off:], p)
	return n, nil
}

func TestUploadSingleShotRespectsProgress(t *testing.T) {
	f := newFakeB2(t, 1<<20)
	s := newTestSession(t, f, Config{})

	payload := bytes.Repeat([]byte("a"), 4096)
	var lastReported int64
	_, err := s.Upload(context.Background(), UploadRequest{
		BucketID: "bucket1",
		FileName: "p.bin",
		Source:   bytes.NewReader(payload),
		Progress: func(p Progress) {
			lastReported = p.BytesTransferred
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), lastReported)
}
