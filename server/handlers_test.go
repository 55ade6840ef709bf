package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func postForm(app *App, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, req)
	return rec
}

func TestWellKnownDocument(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/.well-known/web-identity", nil)
	rec := httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	assertPolicyHeaders(t, rec.Header())

	var doc WellKnown
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode well-known: %v", err)
	}
	if len(doc.ProviderURLs) != 1 {
		t.Fatalf("expected one provider URL, got %d", len(doc.ProviderURLs))
	}
	if doc.ProviderURLs[0] != "https://idp.example.com/api/fedcm/config.json" {
		t.Errorf("provider URL mismatch: %q", doc.ProviderURLs[0])
	}
}

func TestSignInDefaultsToFirstAccount(t *testing.T) {
	app := newTestApp(t)

	rec := postForm(app, "/api/auth/signin", url.Values{}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Set-Login"); got != "logged-in" {
		t.Errorf("Set-Login = %q, expected logged-in", got)
	}

	var status signInStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.SignedIn || status.AccountID != "1234" {
		t.Fatalf("expected signed in as 1234, got %+v", status)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookieName {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}
}

func TestSignInSelectsAccount(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{}
	form.Set("account_id", "5678")
	rec := postForm(app, "/api/auth/signin", form, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var status signInStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.AccountID != "5678" {
		t.Fatalf("expected account 5678, got %q", status.AccountID)
	}
}

func TestSignInRejectsUnknownAccount(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{}
	form.Set("account_id", "not-in-directory")
	rec := postForm(app, "/api/auth/signin", form, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if msg := decodeErrorBody(t, rec); msg != "Invalid account_id" {
		t.Errorf("expected error %q, got %q", "Invalid account_id", msg)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("failed sign-in must not set a cookie")
	}
}

func TestSignInStatusReflectsSession(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	rec := httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, req)

	var status signInStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.SignedIn {
		t.Fatalf("expected signed out before sign-in")
	}

	signin := postForm(app, "/api/auth/signin", url.Values{}, nil)
	cookies := signin.Result().Cookies()

	req = httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, req)

	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.SignedIn || status.AccountID != "1234" {
		t.Fatalf("expected signed in as 1234, got %+v", status)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	app := newTestApp(t)

	signin := postForm(app, "/api/auth/signin", url.Values{}, nil)
	cookies := signin.Result().Cookies()

	rec := postForm(app, "/api/auth/signout", url.Values{}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Set-Login"); got != "logged-out" {
		t.Errorf("Set-Login = %q, expected logged-out", got)
	}

	expiring := rec.Result().Cookies()
	if len(expiring) != 1 || expiring[0].MaxAge != -1 {
		t.Fatalf("expected an expiring cookie, got %v", expiring)
	}

	// The old cookie no longer resolves.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	status := httptest.NewRecorder()
	app.Routes().ServeHTTP(status, req)

	var body signInStatus
	if err := json.NewDecoder(status.Body).Decode(&body); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if body.SignedIn {
		t.Fatalf("session should be gone after sign-out")
	}
}

// TestSignInToTokenFlow walks the full demo loop: establish the mock
// session, then redeem an assertion with the session cookie attached the
// way a FedCM-initiated fetch would.
func TestSignInToTokenFlow(t *testing.T) {
	app := newTestApp(t)

	signin := postForm(app, "/api/auth/signin", url.Values{}, nil)
	if signin.Code != http.StatusOK {
		t.Fatalf("sign-in failed: %d", signin.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/fedcm/token", strings.NewReader(validTokenForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Dest", "webidentity")
	for _, c := range signin.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if body["token"] == "" {
		t.Fatal("expected a token after signing in")
	}
}
