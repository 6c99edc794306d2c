package server

import (
	"encoding/json"
	"net/http"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeYAML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(status)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	_ = enc.Encode(v)
	_ = enc.Close()
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorWith("request failed", err, map[string]any{
			"path": r.URL.Path,
		})
	}
	writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Kind:  rootKind(err).String(),
	})
}

// statusFor maps an error kind to an HTTP status. Metadata failures carry
// the driver's error as cause, and that kind decides.
func statusFor(err error) int {
	switch rootKind(err) {
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindInvalidInput, errs.ErrKindUnsupported:
		return http.StatusBadRequest
	case errs.ErrKindValidation:
		return http.StatusUnprocessableEntity
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	case errs.ErrKindConnectionFailed:
		return http.StatusServiceUnavailable
	case errs.ErrKindMetadata, errs.ErrKindQueryFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// rootKind looks through ErrKindMetadata wrappers for a more specific kind.
func rootKind(err error) errs.ErrKind {
	kind := errs.KindOf(err)
	for kind == errs.ErrKindMetadata {
		e, ok := err.(*errs.Error)
		if !ok || e.Cause == nil {
			break
		}
		inner := errs.KindOf(e.Cause)
		if inner == errs.ErrKindUnknown {
			break
		}
		err, kind = e.Cause, inner
	}
	return kind
}
