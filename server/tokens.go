package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// assertionTTL bounds the advertised validity of minted assertions. Nothing
// server-side enforces it; it only surfaces in the exp claim.
const assertionTTL = 10 * time.Minute

// ErrInvalidAccount rejects token requests naming an account the directory
// does not contain. The message doubles as the response body, hence the
// wire-format casing.
var ErrInvalidAccount = errors.New("Invalid account_id")

// MissingFieldsError reports which required token-request fields were
// absent, in submission order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// assertionClaims is the payload of a minted assertion.
type assertionClaims struct {
	Nonce string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer mints id assertions for validated account and client pairs.
type TokenIssuer struct {
	directory *Directory
	issuer    string
}

// NewTokenIssuer constructs the issuer. issuerOrigin may be empty, in which
// case minted assertions carry no iss claim.
func NewTokenIssuer(directory *Directory, issuerOrigin string) *TokenIssuer {
	return &TokenIssuer{
		directory: directory,
		issuer:    strings.TrimSuffix(issuerOrigin, "/"),
	}
}

// Issue validates the request and mints a bearer token. The token is an
// unsigned JWT so the demo page and relying parties can decode and display
// what was asserted.
func (ti *TokenIssuer) Issue(ctx context.Context, req TokenRequest) (string, error) {
	if missing := req.missingFields(); len(missing) > 0 {
		return "", &MissingFieldsError{Fields: missing}
	}
	if _, ok := ti.directory.Lookup(ctx, req.AccountID); !ok {
		return "", ErrInvalidAccount
	}

	now := time.Now()
	claims := assertionClaims{
		Nonce: req.Nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.AccountID,
			Audience:  jwt.ClaimStrings{req.ClientID},
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(assertionTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		return "", fmt.Errorf("mint assertion: %w", err)
	}
	return signed, nil
}

func (r TokenRequest) missingFields() []string {
	var missing []string
	if r.AccountID == "" {
		missing = append(missing, "account_id")
	}
	if r.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if r.Nonce == "" {
		missing = append(missing, "nonce")
	}
	if r.DisclosureTextShown == "" {
		missing = append(missing, "disclosure_text_shown")
	}
	return missing
}
