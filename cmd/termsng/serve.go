// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"termsng/internal/ai"
	"termsng/internal/auth"
	"termsng/internal/cache"
	"termsng/internal/config"
	"termsng/internal/database"
	"termsng/internal/draft"
	"termsng/internal/generator"
	"termsng/internal/handlers"
	"termsng/internal/identity"
	"termsng/internal/lifecycle"
	"termsng/internal/middleware"
	"termsng/internal/payment"
	"termsng/internal/router"
	"termsng/internal/session"
	"termsng/internal/store"
	"termsng/internal/validation"
)

type loader func() (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL and bring the schema up to date.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Seed a demo account in development (no-op if users exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// Valkey holds sessions, drafts and payment attempts.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	// In non-development environments, session cookies are HTTPS-only.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies, cfg.SessionTTL)
	draftStore := draft.NewStore(valkeyClient, draft.DefaultTTL)

	userStore := store.NewUserStore(db)
	documentStore := store.NewDocumentStore(db)

	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"gemini": {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel},
		"openai": {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
	})
	defer aiRegistry.Close()

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)
	if _, err := aiRegistry.Active(); err != nil {
		slog.Warn("no usable ai provider, generation will fail until one is configured", "error", err)
	}

	gen := generator.New(aiRegistry, cfg.GenerationTimeout)
	controllers := lifecycle.NewManager(gen, documentStore, lifecycle.DefaultIdleTimeout)
	defer controllers.Stop()

	// Payments are trusted from the widget callback unless a Stripe key is
	// configured, in which case the provider reference is verified.
	var verifier payment.Verifier
	if cfg.StripeSecretKey != "" {
		verifier = payment.NewStripeVerifier(cfg.StripeSecretKey, "")
		slog.Info("stripe payment verification enabled")
	}
	payments := payment.NewService(payment.NewRedisStore(valkeyClient), verifier, payment.Config{
		Amount:    cfg.PaymentAmount,
		Currency:  cfg.PaymentCurrency,
		PublicKey: cfg.PaystackPublicKey,
	})

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	identities := identity.NewService(userStore)

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	limiter.TrustProxies(trusted)
	defer limiter.Stop()

	r := router.New(sessionStore, tokens, limiter, router.Handlers{
		Auth:      handlers.NewAuth(identities, sessionStore, tokens, controllers, draftStore),
		Documents: handlers.NewDocuments(controllers, validation.New(), draftStore),
		Drafts:    handlers.NewDrafts(draftStore, cfg.PaymentAmount, cfg.PaymentCurrency),
		Library:   handlers.NewLibrary(controllers),
		Payments:  handlers.NewPayments(controllers, payments),
	})

	// WriteTimeout must accommodate a full generation plus the response.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
