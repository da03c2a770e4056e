package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Verify checks the configured API key against the provider's API using the
// cheap model-listing endpoint. Authentication failures (401/403) are
// reported as a clear error; other failures surface as-is.
func (p Provider) Verify(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	if err == nil {
		return nil
	}
	if isAuthError(err) {
		return fmt.Errorf("%s: API key rejected: %w", p.Name, err)
	}
	return fmt.Errorf("%s: verification failed: %w", p.Name, err)
}

// isAuthError reports whether the error message carries an auth status code.
func isAuthError(err error) bool {
	msg := err.Error()
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		if strings.Contains(msg, fmt.Sprintf("status %d", code)) {
			return true
		}
	}
	return false
}
