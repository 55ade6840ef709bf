// Package client decodes id assertions minted by the mock identity
// provider, so relying-party backends can inspect what the browser handed
// them and guard their own endpoints during FedCM testing.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotMockAssertion rejects tokens that are not unsigned mock assertions.
// Anything carrying a real signature was not minted by this harness.
var ErrNotMockAssertion = errors.New("token is not an unsigned mock assertion")

// Claims is the decoded view of a mock id assertion.
type Claims struct {
	AccountID string
	ClientID  string
	Nonce     string
	Issuer    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type assertionClaims struct {
	Nonce string `json:"nonce,omitempty"`
	jwt.RegisteredClaims
}

// ParserConfig restricts which assertions a Parser accepts. Zero values
// disable the corresponding check.
type ParserConfig struct {
	ExpectedIssuer   string
	ExpectedClientID string
	Leeway           time.Duration
}

// Parser verifies and decodes mock assertions.
type Parser struct {
	parser *jwt.Parser
}

// NewParser builds a parser for mock assertions.
func NewParser(cfg ParserConfig) *Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"none"}),
	}
	if cfg.ExpectedIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.ExpectedIssuer))
	}
	if cfg.ExpectedClientID != "" {
		opts = append(opts, jwt.WithAudience(cfg.ExpectedClientID))
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	return &Parser{parser: jwt.NewParser(opts...)}
}

// Parse decodes an assertion and validates its time claims.
func (p *Parser) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New("token required")
	}

	parsed, err := p.parser.ParseWithClaims(token, &assertionClaims{}, func(t *jwt.Token) (any, error) {
		return jwt.UnsafeAllowNoneSignatureType, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMockAssertion, err)
	}

	claims, ok := parsed.Claims.(*assertionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrNotMockAssertion
	}

	out := &Claims{
		AccountID: claims.Subject,
		Nonce:     claims.Nonce,
		Issuer:    claims.Issuer,
		TokenID:   claims.ID,
	}
	if len(claims.Audience) > 0 {
		out.ClientID = claims.Audience[0]
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// ParseAssertion decodes an assertion with no issuer or audience
// restriction.
func ParseAssertion(token string) (*Claims, error) {
	return NewParser(ParserConfig{}).Parse(token)
}

// RequireAssertion middleware validates bearer assertions and injects the
// decoded claims into the request context.
func RequireAssertion(p *Parser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := p.Parse(parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext retrieves claims attached by the middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

type claimsKey struct{}
