// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"termsng/internal/ai"
	"termsng/internal/models"
)

type fakeGenerator struct {
	response string
	err      error
	delay    time.Duration
	calls    int
	system   string
	user     string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.system, f.user = systemPrompt, userPrompt
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.response, f.err
}

func profile() models.BusinessProfile {
	return models.BusinessProfile{
		BusinessName:        "Ada Consulting",
		BusinessType:        models.BusinessTypeService,
		ServicesDescription: "Consulting",
		ContactEmail:        "hi@ada.ng",
	}
}

func TestGenerateReturnsRawResponse(t *testing.T) {
	raw := "  <h2>1. Introduction</h2>\n<script>alert(1)</script>  "
	fake := &fakeGenerator{response: raw}
	c := New(fake, time.Second)

	got, err := c.Generate(context.Background(), profile())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != raw {
		t.Errorf("response was modified: got %q", got)
	}
	if fake.calls != 1 {
		t.Errorf("calls: got %d, want 1", fake.calls)
	}
	if fake.system != "" {
		t.Errorf("system prompt should be empty, got %q", fake.system)
	}
	if !strings.Contains(fake.user, "**Business Name:** Ada Consulting") {
		t.Error("user prompt should be the built prompt")
	}
}

func TestGenerateErrorCategories(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{"service error", &ai.StatusError{Provider: "openai", StatusCode: 503, Body: "overloaded"}, ErrUnavailable, MsgUnavailable},
		{"transport error", errors.New("dial tcp: connection refused"), ErrUnavailable, MsgUnavailable},
		{"bad key message", errors.New("API key not valid. Please pass a valid API key."), ErrConfiguration, MsgConfiguration},
		{"unauthorized", &ai.StatusError{Provider: "openai", StatusCode: 401}, ErrConfiguration, MsgConfiguration},
		{"no provider", ai.ErrNotConfigured, ErrConfiguration, MsgConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGenerator{err: tt.err}
			_, err := New(fake, time.Second).Generate(context.Background(), profile())

			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if err.Error() != tt.message {
				t.Errorf("message: got %q, want %q", err.Error(), tt.message)
			}
			if fake.calls != 1 {
				t.Errorf("calls: got %d, want exactly 1 (no retry)", fake.calls)
			}
			var ge *Error
			if !errors.As(err, &ge) || !errors.Is(ge.Unwrap(), tt.err) {
				t.Error("cause should be preserved for logging")
			}
		})
	}
}

func TestGenerateTimeoutIsUnavailable(t *testing.T) {
	fake := &fakeGenerator{response: "late", delay: time.Second}
	c := New(fake, 20*time.Millisecond)

	start := time.Now()
	_, err := c.Generate(context.Background(), profile())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout was not enforced")
	}
}

func TestNewDefaultTimeout(t *testing.T) {
	if c := New(&fakeGenerator{}, 0); c.timeout != DefaultTimeout {
		t.Errorf("timeout: got %v, want %v", c.timeout, DefaultTimeout)
	}
}
