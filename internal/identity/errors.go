package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/pkordes/travel-guide/internal/domain"
)

// errorKinds maps identity toolkit error codes to auth error kinds.
var errorKinds = map[string]domain.AuthErrorKind{
	"EMAIL_NOT_FOUND":                  domain.AuthUserNotFound,
	"USER_NOT_FOUND":                   domain.AuthUserNotFound,
	"INVALID_PASSWORD":                 domain.AuthWrongCredential,
	"INVALID_LOGIN_CREDENTIALS":        domain.AuthWrongCredential,
	"EMAIL_EXISTS":                     domain.AuthEmailInUse,
	"WEAK_PASSWORD":                    domain.AuthWeakPassword,
	"USER_DISABLED":                    domain.AuthUserDisabled,
	"OPERATION_NOT_ALLOWED":            domain.AuthProviderDisabled,
	"FEDERATED_USER_ID_ALREADY_LINKED": domain.AuthAccountConflict,
	"EMAIL_CHANGE_NEEDS_VERIFICATION":  domain.AuthAccountConflict,
}

// apiErrorBody is the error envelope returned by the identity toolkit.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorFromBody builds an AuthError from a non-2xx response body. Codes may
// carry a detail after " : ", e.g. "WEAK_PASSWORD : Password should be at
// least 6 characters".
func errorFromBody(status int, raw []byte) *domain.AuthError {
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return &domain.AuthError{
			Kind:    domain.AuthUnknown,
			Message: fmt.Sprintf("identity service returned status %d", status),
		}
	}
	msg := body.Error.Message
	code, _, _ := strings.Cut(msg, " : ")
	code = strings.TrimSpace(code)
	return &domain.AuthError{Kind: errorKinds[code], Message: msg}
}

// transportError wraps a failure to reach the service at all.
func transportError(err error) *domain.AuthError {
	kind := domain.AuthUnknown
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		kind = domain.AuthNetwork
	}
	return &domain.AuthError{Kind: kind, Message: "network request failed", Err: err}
}
