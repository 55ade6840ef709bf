package server

import "time"

// Account is one mock identity served from the accounts endpoint. The ID is
// the only field the protocol handler interprets; the rest exists so the
// browser account chooser has something to display.
type Account struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	GivenName       string   `json:"given_name,omitempty"`
	Email           string   `json:"email"`
	Picture         string   `json:"picture,omitempty"`
	ApprovedClients []string `json:"approved_clients,omitempty"`
}

// AccountList is the accounts endpoint response envelope.
type AccountList struct {
	Accounts []Account `json:"accounts"`
}

// ClientMetadata carries the relying-party links returned from the
// client metadata endpoint.
type ClientMetadata struct {
	PrivacyPolicyURL  string `json:"privacy_policy_url"`
	TermsOfServiceURL string `json:"terms_of_service_url"`
}

// Manifest is the provider configuration document browsers fetch during
// FedCM discovery. Endpoint URLs are absolute when a base origin is known
// and host-relative otherwise.
type Manifest struct {
	AccountsEndpoint       string `json:"accounts_endpoint"`
	ClientMetadataEndpoint string `json:"client_metadata_endpoint"`
	IDAssertionEndpoint    string `json:"id_assertion_endpoint"`
	DisconnectEndpoint     string `json:"disconnect_endpoint"`
}

// WellKnown is the /.well-known/web-identity discovery document.
type WellKnown struct {
	ProviderURLs []string `json:"provider_urls"`
}

// TokenRequest is the value object built from an id-assertion form
// submission. It is validated, exchanged for a token, and discarded.
type TokenRequest struct {
	AccountID           string
	ClientID            string
	Nonce               string
	DisclosureTextShown string
}

// Session captures a signed-in browser session bound to a cookie.
type Session struct {
	ID        string
	AccountID string
	CreatedAt time.Time
	ExpiresAt time.Time
}
