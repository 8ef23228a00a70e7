// Copyright 2016, the Blazer authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error the way the policy stack needs to dispatch on
// it. It generalizes the code/msgCode pair Action() used to switch over.
type Kind int

const (
	// Unknown covers anything not otherwise classified; policies punt on it.
	Unknown Kind = iota
	// Authentication means the auth token is missing, bad or expired.
	Authentication
	// InvalidHash means a SHA1 the caller sent, or the service sent back,
	// didn't match the body.
	InvalidHash
	// Transient means a retry of the same request, after backoff, has a
	// reasonable chance of succeeding.
	Transient
	// CapExceeded means the account or bucket cap would be exceeded.
	CapExceeded
	// NotFound means the referenced bucket, file, or key doesn't exist.
	NotFound
	// BadRequest means the request itself was malformed; retrying it
	// unchanged will fail again.
	BadRequest
	// Conflict means the request raced another mutation (bucket revision
	// mismatch, duplicate bucket name, etc).
	Conflict
	// Forbidden means the caller's key lacks the needed capability.
	Forbidden
	// Cancelled means a caller-supplied cancellation signal fired.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Authentication:
		return "authentication"
	case InvalidHash:
		return "invalid_hash"
	case Transient:
		return "transient"
	case CapExceeded:
		return "cap_exceeded"
	case NotFound:
		return "not_found"
	case BadRequest:
		return "bad_request"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is the error surface callers see: kind, HTTP status (if any),
// service code/message, and the operation context that produced it.
type Error struct {
	Kind    Kind
	Status  int
	Code    string
	Message string

	Op      string // b2 operation name, e.g. "b2_upload_part"
	Attempt int    // 1-based attempt number within the policy that owns the retry
	Bucket  string
	File    string

	// ByteOffset is the number of bytes of the transfer that had been
	// confirmed (uploaded, or delivered to the sink) when the error hit.
	// Zero unless the caller filled it in.
	ByteOffset int64
}

func (e *Error) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s (status %d, code %q): %s", e.Op, e.Kind, e.Status, e.Code, e.Message)
}

// serviceCodeKind maps documented B2 service codes to a Kind, for the
// cases the HTTP status code alone doesn't disambiguate.
var serviceCodeKind = map[string]Kind{
	"bad_auth_token":     Authentication,
	"expired_auth_token": Authentication,
	"bad_digest":         InvalidHash,
	"cap_exceeded":       CapExceeded,
	"not_found":          NotFound,
	"file_not_present":   NotFound,
	"duplicate_bucket_name": Conflict,
	"conflict":           Conflict,
	"unauthorized":       Forbidden,
	"access_denied":      Forbidden,
}

// classify turns an HTTP status plus service code into a Kind.
func classify(status int, code string) Kind {
	if k, ok := serviceCodeKind[code]; ok {
		return k
	}
	switch status {
	case 401:
		return Authentication
	case 403:
		return Forbidden
	case 404:
		return NotFound
	case 408, 429:
		return Transient
	case 400:
		return BadRequest
	case 409:
		return Conflict
	}
	if status >= 500 && status < 600 {
		return Transient
	}
	return Unknown
}

// Classify converts any error returned by this package into an *Error,
// wrapping it as Unknown if it isn't one already. It's the single entry
// point the policy stack (internal/policy) uses to decide what to do.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: Cancelled, Message: err.Error()}
	}
	e, ok := err.(b2err)
	if ok {
		return &Error{
			Kind:    classify(e.code, e.msgCode),
			Status:  e.code,
			Code:    e.msgCode,
			Message: e.msg,
			Op:      e.method,
		}
	}
	return &Error{Kind: Unknown, Message: err.Error()}
}
