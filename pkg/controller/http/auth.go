package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
)

const acceptableSkew = 30 * time.Second

// Authenticator identifies the caller of a request
type Authenticator interface {
	Authenticate(r *http.Request) (types.UserID, error)
}

// JWTAuthenticator verifies bearer tokens and uses the subject claim as the
// caller's user ID. Token issuance is handled by the identity provider.
type JWTAuthenticator struct {
	parseOpts []jwt.ParseOption
}

// NewHS256Authenticator verifies tokens signed with a shared secret
func NewHS256Authenticator(secret []byte, issuer string) (*JWTAuthenticator, error) {
	if len(secret) == 0 {
		return nil, goerr.New("JWT secret is required")
	}
	return newJWTAuthenticator(issuer, jwt.WithKey(jwa.HS256, secret)), nil
}

// NewJWKSAuthenticator verifies tokens against the key set published at jwksURL
func NewJWKSAuthenticator(ctx context.Context, jwksURL, issuer string) (*JWTAuthenticator, error) {
	keySet, err := jwk.Fetch(ctx, jwksURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch JWKS", goerr.V("jwks_url", jwksURL))
	}
	return newJWTAuthenticator(issuer, jwt.WithKeySet(keySet)), nil
}

func newJWTAuthenticator(issuer string, keyOpt jwt.ParseOption) *JWTAuthenticator {
	opts := []jwt.ParseOption{
		keyOpt,
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(acceptableSkew),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTAuthenticator{parseOpts: opts}
}

func (a *JWTAuthenticator) Authenticate(r *http.Request) (types.UserID, error) {
	raw, ok := bearerToken(r)
	if !ok {
		return "", goerr.New("bearer token required")
	}

	token, err := jwt.Parse([]byte(raw), a.parseOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "invalid bearer token")
	}
	if token.Subject() == "" {
		return "", goerr.New("token has no subject")
	}
	return types.UserID(token.Subject()), nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// StaticAuthenticator treats every request as coming from one user. For
// local development only.
type StaticAuthenticator struct {
	userID types.UserID
}

func NewStaticAuthenticator(userID types.UserID) *StaticAuthenticator {
	return &StaticAuthenticator{userID: userID}
}

func (a *StaticAuthenticator) Authenticate(r *http.Request) (types.UserID, error) {
	if a.userID == "" {
		return "", goerr.New("no development user configured")
	}
	return a.userID, nil
}
