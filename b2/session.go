// Package b2 is the transfer engine's public surface: session lifecycle,
// authentication, and the upload/download orchestrators. It borrows the
// HTTP plumbing and endpoint methods of package base (itself adapted from
// Backblaze-blazer's base.go) and layers the credential cache, retry
// policies, and part-parallel transfer logic spec.md describes.
package b2

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nimbusb2/b2core/base"
	"github.com/nimbusb2/b2core/internal/policy"
	"github.com/nimbusb2/b2core/internal/urlcache"
)

// State is the session lifecycle state machine from spec §4.6.
type State int32

const (
	// StateUnauthorized is the initial state: Connect hasn't succeeded yet.
	StateUnauthorized State = iota
	// StateAuthorized means authToken and accountInfo are populated and
	// transfer methods may be called.
	StateAuthorized
	// StateClosed is terminal: the session has been explicitly disposed.
	StateClosed
)

// Config holds the tunables from spec §3. Zero values take the documented
// defaults.
type Config struct {
	RetryCount          int   // default 3
	UploadConnections   int   // default 1
	DownloadConnections int   // default 1
	UploadCutoffSize    int64 // 0 = use the effective upload part size
	UploadPartSize      int64 // 0 = use recommended part size
	DownloadCutoffSize  int64 // 0 = use the effective download part size
	DownloadPartSize    int64 // 0 = use recommended part size
	TestMode            string
	APIBase             string
	UserAgent           string
	Logger              *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.RetryCount <= 0 {
		c.RetryCount = 3
	}
	if c.UploadConnections <= 0 {
		c.UploadConnections = 1
	}
	if c.DownloadConnections <= 0 {
		c.DownloadConnections = 1
	}
	return c
}

// Session owns credentials, account metadata, the policy instances, the
// URL caches, and the executor; it exposes the transfer methods. Spec §3,
// §4.6.
type Session struct {
	keyID  string
	appKey string
	cfg    Config
	log    zerolog.Logger

	mu    sync.RWMutex
	state State
	b2    *base.B2

	uploadURLCache *urlcache.Cache
	partURLCache   *urlcache.Cache

	auth             *policy.Auth
	hash             *policy.Hash
	uploadBulkhead   *policy.Bulkhead
	downloadBulkhead *policy.Bulkhead
}

// NewSession constructs an unauthorized Session. Call Connect before using
// any transfer method.
func NewSession(keyID, applicationKey string, cfg Config) *Session {
	cfg = cfg.withDefaults()
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	s := &Session{
		keyID:  keyID,
		appKey: applicationKey,
		cfg:    cfg,
		log:    logger,
		state:  StateUnauthorized,

		uploadBulkhead:   policy.NewBulkhead(cfg.UploadConnections),
		downloadBulkhead: policy.NewBulkhead(cfg.DownloadConnections),
	}
	s.uploadURLCache = urlcache.New(urlcache.DefaultTTL, s.fetchUploadURL)
	s.partURLCache = urlcache.New(urlcache.DefaultTTL, s.fetchPartURL)
	s.auth = policy.NewAuth(cfg.RetryCount, s.reconnect)
	s.hash = policy.NewHash(cfg.RetryCount)
	return s
}

// Connect authorizes the session against the B2 API, populating authToken
// and accountInfo and evicting both URL caches. Spec §4.6. It is
// idempotent and is also what the Auth policy invokes on token expiry.
func (s *Session) Connect(ctx context.Context) error {
	var opts []base.AuthOption
	if s.cfg.APIBase != "" {
		opts = append(opts, base.SetAPIBase(s.cfg.APIBase))
	}
	if s.cfg.UserAgent != "" {
		opts = append(opts, base.UserAgent(s.cfg.UserAgent))
	}
	switch s.cfg.TestMode {
	case "fail_some_uploads":
		opts = append(opts, base.FailSomeUploads())
	case "expire_some_account_authorization_tokens":
		opts = append(opts, base.ExpireSomeAuthTokens())
	case "force_cap_exceeded":
		opts = append(opts, base.ForceCapExceeded())
	}

	b, err := base.AuthorizeAccount(ctx, s.keyID, s.appKey, opts...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.b2 = b
	s.state = StateAuthorized
	s.mu.Unlock()

	s.uploadURLCache.EvictAll()
	s.partURLCache.EvictAll()
	s.log.Info().Str("account_id", b.AccountID()).Msg("b2: session authorized")
	return nil
}

// reconnect is the Auth policy's hook: re-run Connect with the stored
// credentials. Spec §4.6: "Connect is idempotent and is invoked by the
// Auth policy on expiry."
func (s *Session) reconnect(ctx context.Context) error {
	return s.Connect(ctx)
}

// Close disposes the session (spec §4.6: Authorized -> Closed, terminal).
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.b2 = nil
	return nil
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) authorizedB2() (*base.B2, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case StateClosed:
		return nil, fmt.Errorf("b2: session is closed")
	case StateUnauthorized:
		return nil, &base.Error{Kind: base.Authentication, Message: "session is not connected; call Connect first"}
	}
	return s.b2, nil
}

func (s *Session) fetchUploadURL(ctx context.Context, bucketID string) (urlcache.Entry, error) {
	b, err := s.authorizedB2()
	if err != nil {
		return urlcache.Entry{}, err
	}
	u, err := b.Bucket(bucketID).GetUploadURL(ctx)
	if err != nil {
		return urlcache.Entry{}, err
	}
	return urlcache.Entry{
		UploadURL: u.URI(),
		Token:     u.Token(),
		ExpiresAt: time.Now().Add(urlcache.DefaultTTL),
	}, nil
}

func (s *Session) fetchPartURL(ctx context.Context, fileID string) (urlcache.Entry, error) {
	b, err := s.authorizedB2()
	if err != nil {
		return urlcache.Entry{}, err
	}
	fc, err := b.LargeFile(fileID).GetUploadPartURL(ctx)
	if err != nil {
		return urlcache.Entry{}, err
	}
	return urlcache.Entry{
		UploadURL: fc.URI(),
		Token:     fc.Token(),
		ExpiresAt: time.Now().Add(urlcache.DefaultTTL),
	}, nil
}

// CancelLargeFile wraps b2_cancel_large_file so a caller whose upload
// aborted (e.g. due to cancellation, spec §5) can clean up the orphaned
// server-side large-file session. The orchestrator never calls this
// automatically.
func (s *Session) CancelLargeFile(ctx context.Context, fileID string) error {
	b, err := s.authorizedB2()
	if err != nil {
		return err
	}
	return b.LargeFile(fileID).CancelLargeFile(ctx)
}

// GetFileInfo wraps b2_get_file_info.
func (s *Session) GetFileInfo(ctx context.Context, fileID string) (*base.FileInfo, error) {
	b, err := s.authorizedB2()
	if err != nil {
		return nil, err
	}
	return b.Bucket("").File(fileID, "").GetFileInfo(ctx)
}

// ListBuckets is a thin pass-through to base.ListBuckets. Per spec §1 the
// full listing surface (bucket/key/file listing wrappers, pagination) is
// an external collaborator; this single method exists because Upload and
// Download need SOME way to resolve a bucket name the caller only knows
// by name, without requiring every caller to depend on base directly.
func (s *Session) ListBuckets(ctx context.Context, name string) ([]*base.Bucket, error) {
	b, err := s.authorizedB2()
	if err != nil {
		return nil, err
	}
	return b.ListBuckets(ctx, name)
}
