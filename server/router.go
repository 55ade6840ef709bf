package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes constructs the HTTP router: demo page, discovery document, the
// mock IdP surface, and the sign-in helpers backing the demo.
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(a.Logger))
	r.Use(RecoveryMiddleware(a.Logger))

	r.Get("/", a.handleDemo)

	r.With(PolicyHeadersMiddleware()).
		Get("/.well-known/web-identity", a.handleWellKnown)

	r.Route(fedcmBasePath, func(r chi.Router) {
		r.Use(PolicyHeadersMiddleware())

		// Nested or empty segments never reach a handler; they fail
		// route validation here.
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			fedcmError(w, http.StatusBadRequest, "Invalid route")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			fedcmError(w, http.StatusMethodNotAllowed, "Route not supported")
		})

		r.Get("/{route}", a.handleFedCMGet)
		r.Post("/{route}", a.handleFedCMPost)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signin", a.handleSignIn)
		r.Post("/signout", a.handleSignOut)
		r.Get("/status", a.handleSignInStatus)
	})

	return r
}
