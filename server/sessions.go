package server

import (
	"log/slog"
	"net/http"
	"time"
)

const sessionCookieName = "fedcm_idp_session"

// UserLookup resolves the signed-in account id for a request. The protocol
// handler depends on this instead of the session machinery so tests can
// substitute a fixed identity.
type UserLookup func(r *http.Request) (string, bool)

// SessionManager handles the cookie-backed mock sign-in. It stands in for a
// real IdP's authentication system.
type SessionManager struct {
	store    *sessionStore
	logger   *slog.Logger
	ttl      time.Duration
	secure   bool
	sameSite http.SameSite
}

// NewSessionManager constructs a session manager honouring config. Outside
// dev mode the cookie is SameSite=None: FedCM account and assertion fetches
// are cross-site, and the cookie must reach them.
func NewSessionManager(cfg Config, logger *slog.Logger) *SessionManager {
	sameSite := http.SameSiteNoneMode
	if cfg.Server.DevMode {
		// SameSite=None requires Secure, which dev HTTP cannot offer.
		sameSite = http.SameSiteLaxMode
	}

	return &SessionManager{
		store:    newSessionStore(),
		logger:   logger,
		ttl:      cfg.IdP.SessionTTLOrDefault(),
		secure:   !cfg.Server.DevMode,
		sameSite: sameSite,
	}
}

// Fetch returns the signed-in account id for the request cookie, if any.
func (sm *SessionManager) Fetch(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	sess, ok := sm.store.Get(cookie.Value)
	if !ok {
		return "", false
	}
	if time.Now().After(sess.ExpiresAt) {
		sm.store.Delete(sess.ID)
		return "", false
	}

	// Sliding expiration: extend on activity.
	sess.ExpiresAt = time.Now().Add(sm.ttl)
	sm.store.Save(sess)
	return sess.AccountID, true
}

// Create establishes a session for the account and sets the cookie.
func (sm *SessionManager) Create(w http.ResponseWriter, accountID string) Session {
	now := time.Now()
	sess := Session{
		ID:        sm.store.NewID(),
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.ttl),
	}
	sm.store.Save(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: sm.sameSite,
		MaxAge:   int(sm.ttl.Seconds()),
	})

	sm.logger.Debug("session created", "session_id", sess.ID, "account_id", accountID)
	return sess
}

// Clear removes the session and expires the cookie for sign-out.
func (sm *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		sm.store.Delete(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: sm.sameSite,
		MaxAge:   -1,
	})
}
