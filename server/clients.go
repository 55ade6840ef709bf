package server

// defaultClientMetadata is the record served for relying parties that are
// not explicitly configured.
var defaultClientMetadata = ClientMetadata{
	PrivacyPolicyURL:  "https://idp.example/privacy.html",
	TermsOfServiceURL: "https://idp.example/terms.html",
}

// RelyingPartyRegistry resolves client metadata for relying parties. A test
// harness stays permissive on purpose: a missing client id resolves to the
// default mock client and an unknown one to the default record, never to an
// error.
type RelyingPartyRegistry struct {
	defaultClientID string
	metadata        map[string]ClientMetadata
	fallback        ClientMetadata
}

// NewRelyingPartyRegistry indexes the configured relying parties.
func NewRelyingPartyRegistry(cfgs []RelyingPartyConfig, defaultClientID string) *RelyingPartyRegistry {
	if defaultClientID == "" {
		defaultClientID = DefaultClientID
	}

	metadata := make(map[string]ClientMetadata, len(cfgs))
	for _, cfg := range cfgs {
		md := ClientMetadata{
			PrivacyPolicyURL:  cfg.PrivacyPolicyURL,
			TermsOfServiceURL: cfg.TermsOfServiceURL,
		}
		if md.PrivacyPolicyURL == "" {
			md.PrivacyPolicyURL = defaultClientMetadata.PrivacyPolicyURL
		}
		if md.TermsOfServiceURL == "" {
			md.TermsOfServiceURL = defaultClientMetadata.TermsOfServiceURL
		}
		metadata[cfg.ClientID] = md
	}

	return &RelyingPartyRegistry{
		defaultClientID: defaultClientID,
		metadata:        metadata,
		fallback:        defaultClientMetadata,
	}
}

// DefaultClientID returns the client id used when callers omit one.
func (rp *RelyingPartyRegistry) DefaultClientID() string {
	return rp.defaultClientID
}

// Metadata returns the links for a client id.
func (rp *RelyingPartyRegistry) Metadata(clientID string) ClientMetadata {
	if clientID == "" {
		clientID = rp.defaultClientID
	}
	if md, ok := rp.metadata[clientID]; ok {
		return md
	}
	return rp.fallback
}
