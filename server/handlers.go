package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// loginStatusHeader tells FedCM-aware browsers about IdP session state
// changes (the Login Status API).
const loginStatusHeader = "Set-Login"

// App bundles runtime dependencies for the HTTP service.
type App struct {
	Config         Config
	Logger         *slog.Logger
	Sessions       *SessionManager
	Directory      *Directory
	RelyingParties *RelyingPartyRegistry
	Issuer         *TokenIssuer
	Guard          *OriginGuard

	// CurrentUser resolves the signed-in account for a request. Defaults
	// to the session manager; tests may substitute a fixed identity.
	CurrentUser UserLookup
}

// NewApp wires together the application state from configuration.
func NewApp(cfg Config, logger *slog.Logger) *App {
	directory := NewDirectory(cfg.IdP.Accounts)
	sessions := NewSessionManager(cfg, logger)

	app := &App{
		Config:         cfg,
		Logger:         logger,
		Sessions:       sessions,
		Directory:      directory,
		RelyingParties: NewRelyingPartyRegistry(cfg.RelyingParties, cfg.IdP.DefaultClientID),
		Issuer:         NewTokenIssuer(directory, cfg.BaseOrigin()),
		Guard:          NewOriginGuard(cfg.IdP.BypassSecFetchCheck),
	}
	app.CurrentUser = sessions.Fetch

	if cfg.IdP.BypassSecFetchCheck {
		logger.Warn("fetch-metadata origin guard bypass is enabled; for local testing only")
	}

	return app
}

// handleWellKnown serves the discovery document browsers fetch to locate
// the provider configuration.
func (a *App) handleWellKnown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, BuildWellKnown(a.requestOrigin(r)))
}

// handleSignIn establishes the mock signed-in session. The account defaults
// to the first directory entry so the demo works with zero typing.
func (a *App) handleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fedcmError(w, http.StatusBadRequest, "Failed to parse request: "+err.Error())
		return
	}

	accountID := r.PostFormValue("account_id")
	if accountID == "" {
		accountID = a.Directory.Accounts(r.Context())[0].ID
	}
	if _, ok := a.Directory.Lookup(r.Context(), accountID); !ok {
		fedcmError(w, http.StatusBadRequest, "Invalid account_id")
		return
	}

	sess := a.Sessions.Create(w, accountID)
	w.Header().Set(loginStatusHeader, "logged-in")
	a.Logger.Info("signed in", "account_id", accountID, "session_id", sess.ID)
	writeJSON(w, signInStatus{SignedIn: true, AccountID: accountID})
}

// handleSignOut clears the session and flips the browser's login status.
func (a *App) handleSignOut(w http.ResponseWriter, r *http.Request) {
	a.Sessions.Clear(w, r)
	w.Header().Set(loginStatusHeader, "logged-out")
	writeJSON(w, signInStatus{SignedIn: false})
}

// handleSignInStatus reports session state for the demo page.
func (a *App) handleSignInStatus(w http.ResponseWriter, r *http.Request) {
	if accountID, ok := a.CurrentUser(r); ok {
		writeJSON(w, signInStatus{SignedIn: true, AccountID: accountID})
		return
	}
	writeJSON(w, signInStatus{SignedIn: false})
}

type signInStatus struct {
	SignedIn  bool   `json:"signed_in"`
	AccountID string `json:"account_id,omitempty"`
}

// requestOrigin resolves the base origin for document URLs: the configured
// public host when present, the request host otherwise.
func (a *App) requestOrigin(r *http.Request) string {
	if base := a.Config.BaseOrigin(); base != "" {
		return base
	}
	if r.Host == "" {
		return ""
	}
	return a.Config.scheme() + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// fedcmError writes the uniform JSON error body. Policy headers were
// already applied by the surrounding middleware, so error responses stay
// readable cross-origin.
func fedcmError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
