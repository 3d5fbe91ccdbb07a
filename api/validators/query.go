package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/cartshare/cartshare-backend/pkg/errors"
)

// RequireQueryString returns a non-empty query parameter or a validation
// error naming the missing field.
func RequireQueryString(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// OptionalQueryString returns a trimmed query parameter, empty when absent.
func OptionalQueryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
