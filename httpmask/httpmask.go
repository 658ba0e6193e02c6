// Package httpmask masks net/http responses.
//
// Handlers that own their response value call WriteJSON. Handlers that
// already write encoded bodies are wrapped with Middleware, which buffers
// the body and masks it as a string body before it is sent:
//
//	r := mux.NewRouter()
//	r.Use(httpmask.Middleware(engine))
package httpmask

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zoobzio/cloak"
)

// WriteJSON masks v and writes it with the engine codec.
func WriteJSON(w http.ResponseWriter, r *http.Request, e *cloak.Engine, status int, v any) error {
	if e == nil {
		e = cloak.Default()
	}
	codec := e.Codec()
	data, err := codec.Marshal(e.ProcessResponseBody(r.Context(), v))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// Middleware masks buffered response bodies whose content type matches the
// engine codec. Other bodies are forwarded unchanged.
func Middleware(e *cloak.Engine) mux.MiddlewareFunc {
	if e == nil {
		e = cloak.Default()
	}
	return transform(e.Codec().ContentType(), func(r *http.Request, body []byte) []byte {
		return []byte(e.ProcessStringBody(r.Context(), string(body)))
	})
}

// TypedMiddleware decodes matching bodies into T so the directives of T
// apply. Bodies that do not decode are forwarded unchanged.
func TypedMiddleware[T any](e *cloak.Engine) mux.MiddlewareFunc {
	if e == nil {
		e = cloak.Default()
	}
	return transform(e.Codec().ContentType(), func(r *http.Request, body []byte) []byte {
		masked, err := cloak.MaskJSON[T](r.Context(), e, body)
		if err != nil {
			return body
		}
		return masked
	})
}

func transform(contentType string, fn func(*http.Request, []byte) []byte) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			buf := &bufferedWriter{header: make(http.Header), status: http.StatusOK}
			next.ServeHTTP(buf, r)

			body := buf.body.Bytes()
			if matches(buf.header.Get("Content-Type"), contentType) && len(body) > 0 {
				body = fn(r, body)
			}

			for k, v := range buf.header {
				w.Header()[k] = v
			}
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.WriteHeader(buf.status)
			_, _ = w.Write(body)
		})
	}
}

func matches(header, contentType string) bool {
	if header == "" {
		return false
	}
	got, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	want, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return got == want
}

// bufferedWriter holds the response until the handler returns.
type bufferedWriter struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(code int) {
	if b.wroteHeader {
		return
	}
	b.wroteHeader = true
	b.status = code
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}
