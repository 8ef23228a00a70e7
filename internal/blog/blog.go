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

// Package blog provides the vlog-style leveled logger base.go calls
// (blog.V(n).Infof(...)), backed by zerolog rather than a bespoke sink.
package blog

import (
	"os"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()

var level int32

func init() {
	if v := os.Getenv("B2CORE_VLOG"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			atomic.StoreInt32(&level, int32(n))
		}
	}
}

// SetLevel sets the verbosity threshold; calls at or below this level log.
func SetLevel(n int) {
	atomic.StoreInt32(&level, int32(n))
}

// SetLogger swaps the underlying zerolog.Logger, e.g. to attach a session's
// configured writer or fields.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Verbose gates a logging statement on the current verbosity level.
type Verbose bool

// V reports whether logging at level n is enabled.
func V(n int32) Verbose {
	return Verbose(n <= atomic.LoadInt32(&level))
}

// Infof logs at info level if v is enabled.
func (v Verbose) Infof(format string, args ...interface{}) {
	if !v {
		return
	}
	logger.Info().Msgf(format, args...)
}

// Errorf always logs, regardless of verbosity.
func Errorf(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

// Warningf always logs, regardless of verbosity.
func Warningf(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}
