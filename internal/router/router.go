// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains for the
// termsng JSON API.
package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"termsng/internal/handlers"
	"termsng/internal/middleware"
)

// Handlers groups the handler sets mounted under /api.
type Handlers struct {
	Auth      *handlers.Auth
	Documents *handlers.Documents
	Drafts    *handlers.Drafts
	Library   *handlers.Library
	Payments  *handlers.Payments
}

// New creates the configured Chi router. limiter may be nil to disable
// rate limiting.
func New(sessions middleware.SessionStore, tokens middleware.TokenParser, limiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check: no session, no rate limit.
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Use(middleware.Identify(sessions, tokens))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.SignUp)
			r.Post("/signin", h.Auth.SignIn)
			r.Post("/signout", h.Auth.SignOut)
			r.Get("/me", h.Auth.Me)
			r.Post("/token", h.Auth.Token)
		})

		r.Get("/draft", h.Drafts.Get)
		r.Put("/draft", h.Drafts.Put)
		r.Delete("/draft", h.Drafts.Delete)
		r.Get("/options", h.Drafts.Options)

		r.Post("/generate", h.Documents.Generate)

		// The displayed document. Copy and download go through the
		// access gate, which answers 401 or 402 itself.
		r.Route("/document", func(r chi.Router) {
			r.Get("/", h.Documents.Current)
			r.Delete("/", h.Documents.Clear)
			r.Get("/view", h.Documents.View)
			r.Get("/copy", h.Documents.Copy)
			r.Get("/download", h.Documents.Download)
		})

		// Signed-in only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", h.Library.List)
				r.Post("/", h.Library.Save)
				r.Post("/{id}/view", h.Library.Open)
				r.Delete("/{id}", h.Library.Delete)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Post("/checkout", h.Payments.Checkout)
				r.Post("/{ref}/confirm", h.Payments.Confirm)
				r.Post("/{ref}/cancel", h.Payments.Cancel)
			})
		})
	})

	return r
}
