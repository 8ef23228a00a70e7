package base

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"already typed", &Error{Kind: CapExceeded}, CapExceeded},
		{"context cancelled", context.Canceled, Cancelled},
		{"expired auth token by code", b2err{code: 401, msgCode: "expired_auth_token"}, Authentication},
		{"bad digest", b2err{code: 400, msgCode: "bad_digest"}, InvalidHash},
		{"status only 401", b2err{code: 401}, Authentication},
		{"status only 404", b2err{code: 404}, NotFound},
		{"status only 429", b2err{code: 429}, Transient},
		{"status only 500", b2err{code: 500}, Transient},
		{"status only 503", b2err{code: 503}, Transient},
		{"status only 409", b2err{code: 409}, Conflict},
		{"unrecognized", b2err{code: 999}, Unknown},
		{"plain error", errors.New("boom"), Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: NotFound, Status: 404, Code: "not_found", Message: "no such file", Op: "b2_get_file_info"}
	assert.Contains(t, e.Error(), "b2_get_file_info")
	assert.Contains(t, e.Error(), "not_found")
	assert.Contains(t, e.Error(), "no such file")
}

func TestErrorStringNoCode(t *testing.T) {
	e := &Error{Kind: Unknown, Op: "b2_upload_file"}
	assert.Equal(t, "b2_upload_file: unknown", e.Error())
}
