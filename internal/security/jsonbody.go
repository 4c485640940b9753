package security

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"github.com/noah-isme/wealth-tithe/internal/common"
)

// JSONBody guards request payloads of a JSON API. Bodies must be JSON (an absent
// Content-Type is tolerated) and no larger than MaxBytes. Methods without a body pass through.
type JSONBody struct {
	MaxBytes int64
}

// Middleware answers 415 for non-JSON payloads and 413 for oversized ones, in the API error envelope.
func (j JSONBody) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !carriesBody(r) {
			next.ServeHTTP(w, r)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || mediaType != "application/json" {
				common.JSONError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "request body must be application/json", nil)
				return
			}
		}
		if j.MaxBytes <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > j.MaxBytes {
			tooLarge(w)
			return
		}

		buf, err := io.ReadAll(io.LimitReader(r.Body, j.MaxBytes+1))
		_ = r.Body.Close()
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
			return
		}
		if int64(len(buf)) > j.MaxBytes {
			tooLarge(w)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(buf))
		r.ContentLength = int64(len(buf))
		next.ServeHTTP(w, r)
	})
}

func carriesBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
		return false
	}
	return r.Body != nil && r.Body != http.NoBody
}

func tooLarge(w http.ResponseWriter) {
	common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large", nil)
}
