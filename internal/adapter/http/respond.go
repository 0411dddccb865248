package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sponsorhub/internal/core/apperr"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError answers with the status and body for err.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := h.errorBody(r, err)
	h.writeJSON(w, status, resp)
}

// errorBody maps the error kind to a status code. Storage and internal
// failures are logged and answered with a generic message.
func (h *Handler) errorBody(r *http.Request, err error) (int, errorResponse) {
	kind := apperr.KindOf(err)
	resp := errorResponse{Error: string(kind), Message: err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		resp.Message = ae.Message
		resp.Fields = ae.Fields
	}

	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest, resp
	case apperr.KindForbidden:
		return http.StatusForbidden, resp
	case apperr.KindNotFound:
		return http.StatusNotFound, resp
	case apperr.KindConflict, apperr.KindInvalidState:
		return http.StatusConflict, resp
	case apperr.KindStorage:
		h.logger.Error("storage error", slog.String("path", r.URL.Path), slog.Any("error", err))
		return http.StatusServiceUnavailable, errorResponse{Error: string(kind), Message: "temporarily unavailable, retry later"}
	}
	h.logger.Error("internal error", slog.String("path", r.URL.Path), slog.Any("error", err))
	return http.StatusInternalServerError, errorResponse{Error: string(apperr.KindInternal), Message: "internal error"}
}

// decode reads a single JSON object, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.Validation("body", "request body is empty")
		case errors.As(err, &syntaxErr):
			return apperr.Validation("body", "malformed JSON at offset %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return apperr.Validation(typeErr.Field, "%s must be %s", typeErr.Field, typeErr.Type)
		case errors.As(err, &maxErr):
			return apperr.Validation("body", "request body exceeds %d bytes", maxErr.Limit)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return apperr.Validation(field, "unknown field %q", field)
		}
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return ae
		}
		return apperr.Validation("body", "invalid JSON: %v", err)
	}
	if dec.More() {
		return apperr.Validation("body", "request body must hold a single JSON object")
	}
	return nil
}

const dateLayout = "2006-01-02"

// parseTime accepts RFC 3339 timestamps and bare YYYY-MM-DD dates, the
// latter as UTC midnight.
func parseTime(field, v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Validation(field, "%s must be RFC 3339 or YYYY-MM-DD", field)
}

// flexTime is a JSON time that also accepts YYYY-MM-DD.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return apperr.Validation("date", "dates must be strings")
	}
	parsed, err := parseTime("date", s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *flexTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func queryTime(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	return parseTime(name, v)
}

func queryBool(r *http.Request, name string) (*bool, error) {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "":
		return nil, nil
	case "true", "1":
		v := true
		return &v, nil
	case "false", "0":
		v := false
		return &v, nil
	}
	return nil, apperr.Validation(name, "%s must be true or false", name)
}

// queryList splits a comma separated parameter.
func queryList(r *http.Request, name string) []string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func badParam(name, value string) error {
	return apperr.Validation(name, "unknown %s %q", name, value)
}
