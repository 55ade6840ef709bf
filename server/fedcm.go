package server

import (
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	// fetchMetadataHeader carries the browser's declared purpose for a
	// request.
	fetchMetadataHeader = "Sec-Fetch-Dest"

	// fedcmDestination is the destination browsers set on fetches made by
	// the credential-management subsystem. Ordinary script cannot set it.
	fedcmDestination = "webidentity"
)

// Route identifies one operation of the mock IdP surface.
type Route int

const (
	RouteManifest Route = iota
	RouteConfig
	RouteAccounts
	RouteClientMetadata
	RouteDisconnect
	RouteToken
)

// ParseRoute maps a path segment onto a supported Route.
func ParseRoute(segment string) (Route, bool) {
	switch segment {
	case "manifest":
		return RouteManifest, true
	case "config.json":
		return RouteConfig, true
	case "accounts":
		return RouteAccounts, true
	case "client-metadata":
		return RouteClientMetadata, true
	case "disconnect":
		return RouteDisconnect, true
	case "token":
		return RouteToken, true
	default:
		return 0, false
	}
}

// requiresGuard reports whether a route must pass the origin guard. The
// manifest documents are exempt: browsers fetch them during discovery,
// before any identity context exists.
func requiresGuard(route Route) bool {
	switch route {
	case RouteManifest, RouteConfig:
		return false
	default:
		return true
	}
}

// OriginGuard checks that a request genuinely originates from the browser's
// credential-management subsystem rather than from arbitrary script.
type OriginGuard struct {
	bypass bool
}

// NewOriginGuard builds the guard. bypass disables the header check so the
// endpoints can be exercised with curl.
func NewOriginGuard(bypass bool) *OriginGuard {
	return &OriginGuard{bypass: bypass}
}

// Allow reports whether the request carries the expected fetch-metadata
// destination. Always true in bypass mode.
func (g *OriginGuard) Allow(r *http.Request) bool {
	if g.bypass {
		return true
	}
	return r.Header.Get(fetchMetadataHeader) == fedcmDestination
}

// handleFedCMGet dispatches GET {route} requests. Route existence is
// checked first, then the method pairing, then the origin guard, so each
// failure mode keeps its own status.
func (a *App) handleFedCMGet(w http.ResponseWriter, r *http.Request) {
	route, ok := ParseRoute(chi.URLParam(r, "route"))
	if !ok {
		fedcmError(w, http.StatusBadRequest, "Invalid route")
		return
	}
	if route == RouteToken {
		fedcmError(w, http.StatusMethodNotAllowed, "Route not supported")
		return
	}
	if requiresGuard(route) && !a.Guard.Allow(r) {
		fedcmError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch route {
	case RouteManifest, RouteConfig:
		writeJSON(w, BuildManifest(a.requestOrigin(r)))
	case RouteAccounts:
		writeJSON(w, AccountList{Accounts: a.Directory.Accounts(r.Context())})
	case RouteClientMetadata:
		writeJSON(w, a.RelyingParties.Metadata(r.URL.Query().Get("client_id")))
	case RouteDisconnect:
		// The mock keeps no per-client authorization state to revoke, so
		// disconnect just acknowledges.
		writeJSON(w, disconnectResponse{Success: true})
	}
}

// handleFedCMPost dispatches POST {route} requests. Token issuance is the
// only POST operation on this surface.
func (a *App) handleFedCMPost(w http.ResponseWriter, r *http.Request) {
	route, ok := ParseRoute(chi.URLParam(r, "route"))
	if !ok {
		fedcmError(w, http.StatusBadRequest, "Invalid route")
		return
	}
	if route != RouteToken {
		fedcmError(w, http.StatusMethodNotAllowed, "Route not supported")
		return
	}
	if !a.Guard.Allow(r) {
		fedcmError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	a.handleToken(w, r)
}

// handleToken issues an id assertion for a signed-in account. Preconditions
// run in a fixed order so each failure yields a distinct status: no session
// 401, wrong content type 415, bad form or bad fields 400.
func (a *App) handleToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.CurrentUser(r)
	if !ok {
		fedcmError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !isFormEncoded(r.Header.Get("Content-Type")) {
		fedcmError(w, http.StatusUnsupportedMediaType, "Unsupported content type")
		return
	}

	if err := r.ParseForm(); err != nil {
		fedcmError(w, http.StatusBadRequest, "Failed to parse request: "+err.Error())
		return
	}

	req := TokenRequest{
		AccountID:           r.PostFormValue("account_id"),
		ClientID:            r.PostFormValue("client_id"),
		Nonce:               r.PostFormValue("nonce"),
		DisclosureTextShown: r.PostFormValue("disclosure_text_shown"),
	}

	token, err := a.Issuer.Issue(r.Context(), req)
	if err != nil {
		a.Logger.Warn("token issuance rejected",
			"account_id", req.AccountID,
			"client_id", req.ClientID,
			"error", err,
		)
		fedcmError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.Logger.Info("token issued",
		"account_id", req.AccountID,
		"client_id", req.ClientID,
		"session_user", userID,
	)
	writeJSON(w, tokenResponse{Token: token})
}

func isFormEncoded(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded"
}

type tokenResponse struct {
	Token string `json:"token"`
}

type disconnectResponse struct {
	Success bool `json:"success"`
}
