// Package identity verifies externally issued bearer tokens. It establishes
// who the caller is and nothing about what they may do.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/votopopular/civic-api/internal/config"
)

// LocalIssuer is the issuer and audience of tokens signed in hmac mode.
const LocalIssuer = "voto-popular-local"

var (
	ErrInvalidIssuer   = errors.New("invalid token issuer")
	ErrInvalidAudience = errors.New("invalid token audience")
	ErrMissingSubject  = errors.New("missing subject")
	ErrMissingExpiry   = errors.New("missing expiry")
)

// Identity is the verified caller as reported by the identity provider.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

type Verifier struct {
	issuer   string
	audience string
	method   jwt.SigningMethod
	timeout  time.Duration
	jwks     *JWKSClient
	secret   []byte
}

// NewFirebase accepts RS256 ID tokens issued for the given project.
func NewFirebase(projectID, jwksURL string, timeout time.Duration) *Verifier {
	return &Verifier{
		issuer:   "https://securetoken.google.com/" + projectID,
		audience: projectID,
		method:   jwt.SigningMethodRS256,
		timeout:  timeout,
		jwks:     NewJWKSClient(jwksURL, timeout),
	}
}

// NewHMAC accepts HS256 tokens signed with secret, for local development and tests.
func NewHMAC(secret string) *Verifier {
	return &Verifier{
		issuer:   LocalIssuer,
		audience: LocalIssuer,
		method:   jwt.SigningMethodHS256,
		secret:   []byte(secret),
	}
}

func FromConfig(cfg *config.Config) *Verifier {
	if cfg.IdentityProvider == "hmac" {
		return NewHMAC(cfg.IdentityHMAC)
	}
	return NewFirebase(cfg.FirebaseProject, cfg.IdentityJWKSURL, cfg.IdentityTimeout)
}

// Keyfunc resolves the verification key for a parsed token.
func (v *Verifier) Keyfunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != v.method.Alg() {
		return nil, fmt.Errorf("unsupported algorithm: %s", token.Method.Alg())
	}
	if v.jwks == nil {
		return v.secret, nil
	}

	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("missing kid header")
	}
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return v.jwks.PublicKey(ctx, kid)
}

// Identity checks the claims of a token whose signature is already verified.
func (v *Verifier) Identity(token *jwt.Token) (*Identity, error) {
	if token == nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	if iss, _ := claims.GetIssuer(); iss != v.issuer {
		return nil, ErrInvalidIssuer
	}
	aud, _ := claims.GetAudience()
	if !contains(aud, v.audience) {
		return nil, ErrInvalidAudience
	}
	if exp, _ := claims.GetExpirationTime(); exp == nil {
		return nil, ErrMissingExpiry
	}
	sub, _ := claims.GetSubject()
	if sub == "" || len(sub) > 128 {
		return nil, ErrMissingSubject
	}

	id := &Identity{Subject: sub}
	id.Email, _ = claims["email"].(string)
	id.EmailVerified, _ = claims["email_verified"].(bool)
	id.Name, _ = claims["name"].(string)
	return id, nil
}

// Verify parses and checks a raw bearer token.
func (v *Verifier) Verify(raw string) (*Identity, error) {
	token, err := jwt.Parse(raw, v.Keyfunc, jwt.WithValidMethods([]string{v.method.Alg()}))
	if err != nil {
		return nil, err
	}
	return v.Identity(token)
}

// SignHMAC issues a token that NewHMAC(secret) accepts.
func SignHMAC(secret string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":            LocalIssuer,
		"aud":            LocalIssuer,
		"sub":            id.Subject,
		"email":          id.Email,
		"email_verified": id.EmailVerified,
		"name":           id.Name,
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
