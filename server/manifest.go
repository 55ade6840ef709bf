package server

import "strings"

// fedcmBasePath is the URL prefix every mock IdP route lives under.
const fedcmBasePath = "/api/fedcm"

// BuildManifest constructs the provider configuration document. baseOrigin
// may be empty when the public origin cannot be determined, in which case
// the endpoint URLs come out host-relative.
func BuildManifest(baseOrigin string) Manifest {
	base := strings.TrimSuffix(baseOrigin, "/") + fedcmBasePath
	return Manifest{
		AccountsEndpoint:       base + "/accounts",
		ClientMetadataEndpoint: base + "/client-metadata",
		IDAssertionEndpoint:    base + "/token",
		DisconnectEndpoint:     base + "/disconnect",
	}
}

// BuildWellKnown constructs the /.well-known/web-identity document pointing
// browsers at the provider configuration file.
func BuildWellKnown(baseOrigin string) WellKnown {
	base := strings.TrimSuffix(baseOrigin, "/") + fedcmBasePath
	return WellKnown{ProviderURLs: []string{base + "/config.json"}}
}
