// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generator sends a built prompt to the text generation service and
// converts failures into the two user-facing categories the API reports.
package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"termsng/internal/ai"
	"termsng/internal/models"
	"termsng/internal/prompt"
)

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 60 * time.Second

// User-facing messages for generation failures.
const (
	MsgUnavailable   = "Failed to generate Terms of Service. The AI service may be temporarily unavailable."
	MsgConfiguration = "The configured API key is invalid. Please check your configuration."
)

var (
	// ErrUnavailable covers unreachable services, timeouts, and any failure
	// that is not a configuration problem.
	ErrUnavailable = errors.New("generation unavailable")

	// ErrConfiguration means the service rejected our credentials.
	ErrConfiguration = errors.New("generation misconfigured")
)

// Error is returned by Generate. Message is safe to show to users; the
// underlying cause is only logged.
type Error struct {
	Message string
	kind    error
	cause   error
}

func (e *Error) Error() string { return e.Message }

// Is matches ErrUnavailable or ErrConfiguration.
func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Unwrap() error { return e.cause }

// TextGenerator is the part of ai.Registry the client needs.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client generates Terms of Service documents from business profiles.
type Client struct {
	gen     TextGenerator
	timeout time.Duration
}

// New creates a Client. A non-positive timeout selects DefaultTimeout.
func New(gen TextGenerator, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{gen: gen, timeout: timeout}
}

// Generate builds the prompt for p and sends it as a single request with
// no retry. The response is returned exactly as received.
func (c *Client) Generate(ctx context.Context, p models.BusinessProfile) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	html, err := c.gen.Generate(ctx, "", prompt.Build(p))
	if err != nil {
		slog.Error("document generation failed",
			"error", err,
			"duration", time.Since(start).String(),
			"premium", prompt.IsPremium(p),
		)
		return "", classify(err)
	}

	slog.Info("document generated",
		"duration", time.Since(start).String(),
		"premium", prompt.IsPremium(p),
		"bytes", len(html),
	)
	return html, nil
}

func classify(err error) *Error {
	if ai.IsInvalidCredentials(err) {
		return &Error{Message: MsgConfiguration, kind: ErrConfiguration, cause: err}
	}
	return &Error{Message: MsgUnavailable, kind: ErrUnavailable, cause: err}
}
