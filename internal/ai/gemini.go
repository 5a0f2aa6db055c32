// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiProvider implements the Provider interface on top of the Google
// generative AI SDK.
type geminiProvider struct {
	model  string
	client *genai.Client
}

// newGemini creates a Gemini client authenticated with the configured key.
// BaseURL, when set, overrides the API endpoint.
func newGemini(ctx context.Context, cfg ProviderConfig) (*geminiProvider, error) {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &geminiProvider{model: cfg.Model, client: client}, nil
}

func (p *geminiProvider) Name() string { return "gemini" }

// Generate sends a single generateContent request and concatenates the
// text parts of the first candidate.
func (p *geminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := p.client.GenerativeModel(p.model)
	if systemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("gemini: response blocked: %w", err)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return responseText(resp)
}

// Close releases the underlying SDK client.
func (p *geminiProvider) Close() error {
	return p.client.Close()
}

// responseText extracts the text of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates returned")
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("gemini: empty candidate content")
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: no text in response")
	}
	return b.String(), nil
}
