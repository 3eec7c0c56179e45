package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/application/action"
)

const maxBodyBytes = 1 << 20

// decodeRaw reads an optional JSON object body. Numbers are kept as
// json.Number so large ids survive the round trip.
func decodeRaw(r *http.Request) (action.Raw, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	raw := action.Raw{}
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return action.Raw{}, nil
		}
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("request body must contain a single JSON value")
	}
	return raw, nil
}

func readIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host := strings.TrimSpace(r.RemoteAddr)
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

func writeValidationError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	code := "VALIDATION_ERROR"
	msg := err.Error()
	logHTTPOperationError(ctx, operation, http.StatusBadRequest, code, msg, err)
	writeError(w, http.StatusBadRequest, code, msg)
}

// writeActionResult renders an action outcome. Validation failures are 400,
// rule violations 422 except invalid credentials, which is 401.
func writeActionResult(ctx context.Context, w http.ResponseWriter, operation string, res action.Result) {
	if !res.Failed() {
		writeJSON(w, http.StatusOK, actionSuccess{
			Status:     "success",
			Message:    res.Success,
			Data:       res.Data,
			RedirectTo: res.RedirectTo,
		})
		return
	}
	status := http.StatusUnprocessableEntity
	switch {
	case res.Kind == action.KindValidation:
		status = http.StatusBadRequest
	case res.Code == "INVALID_CREDENTIALS":
		status = http.StatusUnauthorized
	}
	logHTTPOperationError(ctx, operation, status, res.Code, res.Error, nil)
	writeJSON(w, status, apiError{
		Status:  "error",
		Code:    res.Code,
		Message: res.Error,
		Field:   res.Field,
		Input:   res.Input,
	})
}
