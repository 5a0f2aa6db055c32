// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrNotConfigured is returned when the active provider has no credentials.
var ErrNotConfigured = errors.New("provider not configured")

// StatusError is a non-2xx response from a provider's HTTP API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// IsInvalidCredentials reports whether err means the configured API key was
// rejected. Such failures are not retryable and point at configuration.
func IsInvalidCredentials(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
	}

	var ge *googleapi.Error
	if errors.As(err, &ge) {
		if ge.Code == http.StatusUnauthorized || ge.Code == http.StatusForbidden {
			return true
		}
		if strings.Contains(ge.Message, "API key not valid") {
			return true
		}
	}

	return strings.Contains(err.Error(), "API key not valid")
}
