// Package api holds the request decoding and response envelope shared by HTTP handlers.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/hedgeflow/internal/domain"
)

// ContentTypeMsgpack is negotiated through the Accept and Content-Type headers
const ContentTypeMsgpack = "application/x-msgpack"

const maxBodyBytes = 1 << 20

// Metadata accompanies every response
type Metadata struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// Envelope is the response body of every endpoint
type Envelope struct {
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is one failed validation rule
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// RequestError is a malformed or invalid request body. It matches domain.ErrInvalidInput.
type RequestError struct {
	Message string
	Fields  []FieldError
}

func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(names, ", "))
}

func (e *RequestError) Unwrap() error {
	return domain.ErrInvalidInput
}

// Responder decodes requests and writes enveloped responses
type Responder struct {
	validate *validator.Validate
	now      func() time.Time
	log      zerolog.Logger
}

// NewResponder creates a responder whose validation errors use json field names
func NewResponder(log zerolog.Logger) *Responder {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Responder{
		validate: v,
		now:      time.Now,
		log:      log.With().Str("component", "api").Logger(),
	}
}

// Decode reads a JSON or msgpack body into dst and validates it
func (rs *Responder) Decode(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	var err error
	if isMsgpack(r.Header.Get("Content-Type")) {
		dec := msgpack.NewDecoder(body)
		dec.SetCustomStructTag("json")
		err = dec.Decode(dst)
	} else {
		err = json.NewDecoder(body).Decode(dst)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &RequestError{Message: "request body is empty"}
		}
		return &RequestError{Message: fmt.Sprintf("malformed request body: %v", err)}
	}

	return rs.Validate(dst)
}

// Validate runs struct validation rules on v
func (rs *Responder) Validate(v interface{}) error {
	err := rs.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestError{Message: err.Error()}
	}

	fields := make([]FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, FieldError{
			Field: strings.TrimPrefix(fe.Namespace(), namespaceRoot(fe)),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return &RequestError{Message: "validation failed", Fields: fields}
}

// WriteData writes data inside the response envelope
func (rs *Responder) WriteData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	rs.write(w, r, status, Envelope{Data: data, Metadata: rs.metadata(r)})
}

// WriteError maps err to a status code and writes it inside the response envelope.
// Invalid input is 400, a missing market snapshot is 503, anything else is 500.
func (rs *Responder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := &ErrorBody{Message: err.Error()}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		body.Fields = reqErr.Fields
	}

	if status == http.StatusInternalServerError {
		rs.log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		body.Message = "internal error"
	} else {
		rs.log.Debug().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("Request rejected")
	}

	rs.write(w, r, status, Envelope{Error: body, Metadata: rs.metadata(r)})
}

// StatusFor returns the HTTP status for an error
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSnapshotUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (rs *Responder) metadata(r *http.Request) Metadata {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	return Metadata{
		Timestamp: rs.now().UTC().Format(time.RFC3339),
		RequestID: id,
	}
}

// write encodes the envelope before sending headers so an encoding failure
// becomes a 500 error envelope instead of a truncated success.
func (rs *Responder) write(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	contentType := "application/json"
	encode := func(buf *bytes.Buffer, v interface{}) error {
		return json.NewEncoder(buf).Encode(v)
	}
	if isMsgpack(r.Header.Get("Accept")) {
		contentType = ContentTypeMsgpack
		encode = func(buf *bytes.Buffer, v interface{}) error {
			enc := msgpack.NewEncoder(buf)
			enc.SetCustomStructTag("json")
			return enc.Encode(v)
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf, env); err != nil {
		rs.log.Error().Err(err).Str("content_type", contentType).Msg("Failed to encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		env = Envelope{Error: &ErrorBody{Message: "internal error"}, Metadata: env.Metadata}
		if err := encode(&buf, env); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		rs.log.Debug().Err(err).Msg("Failed to write response")
	}
}

func isMsgpack(header string) bool {
	for _, part := range strings.Split(header, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == ContentTypeMsgpack {
			return true
		}
	}
	return false
}

// namespaceRoot is the struct name prefix validator puts on field namespaces
func namespaceRoot(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
