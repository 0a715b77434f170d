package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

// ErrorDetail is the machine-readable code and display message of a failure.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response. State is the
// snapshot after the failed action, since most failures also raise an alert.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
	State *ui.State   `json:"state,omitempty"`
}

// authStatus maps identity failures onto HTTP statuses.
var authStatus = map[domain.AuthErrorKind]int{
	domain.AuthUserNotFound:     http.StatusUnauthorized,
	domain.AuthWrongCredential:  http.StatusUnauthorized,
	domain.AuthEmailInUse:       http.StatusConflict,
	domain.AuthAccountConflict:  http.StatusConflict,
	domain.AuthWeakPassword:     http.StatusUnprocessableEntity,
	domain.AuthUserDisabled:     http.StatusForbidden,
	domain.AuthProviderDisabled: http.StatusForbidden,
	domain.AuthPopupCancelled:   http.StatusBadRequest,
	domain.AuthPopupBlocked:     http.StatusBadRequest,
	domain.AuthPopupClosed:      http.StatusBadRequest,
	domain.AuthNetwork:          http.StatusServiceUnavailable,
}

// errorResponse picks the status and body for err. Anything not recognised
// came from a remote dependency and maps to 502.
func errorResponse(err error) (int, ErrorResponse) {
	var ae *domain.AuthError
	var pm interface{ PublicMessage() string }

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, body("validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, body("no_session", "sign in required")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, body("not_found", unwrapMessage(err))
	case errors.As(err, &ae):
		status, ok := authStatus[ae.Kind]
		if !ok {
			status = http.StatusBadGateway
		}
		return status, body("auth_"+strings.ReplaceAll(ae.Kind.String(), "-", "_"), ae.Error())
	case domain.IsTransient(err):
		return http.StatusServiceUnavailable, body("unavailable", http.StatusText(http.StatusServiceUnavailable))
	case errors.As(err, &pm) && pm.PublicMessage() != "":
		return http.StatusBadGateway, body("upstream_error", pm.PublicMessage())
	default:
		return http.StatusBadGateway, body("upstream_error", http.StatusText(http.StatusBadGateway))
	}
}

// requestError is the body for a request rejected before reaching a
// controller (malformed JSON, unknown tab).
func requestError(message string) ErrorResponse {
	return body("validation_error", message)
}

func body(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// unwrapMessage drops the operation prefixes from a wrapped sentinel error.
// e.g. "guide.Flow.Submit: validation error: end date" → "end date"
func unwrapMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrNotFound} {
		marker := sentinel.Error() + ": "
		if i := strings.LastIndex(msg, marker); i >= 0 {
			return msg[i+len(marker):]
		}
	}
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDecodeError rejects a body decodeJSON could not read: 413 when the
// body limit cut it short, 422 otherwise.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge,
			body("payload_too_large", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)))
		return
	}
	writeJSON(w, http.StatusUnprocessableEntity, requestError(err.Error()))
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
