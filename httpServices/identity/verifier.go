package identity

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"sync"

	"parcel-delivery/logger"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified identity extracted from a bearer token.
type Claims struct {
	Email   string
	Subject string
	Raw     jwt.MapClaims
}

// ErrMissingEmail is returned for a valid token that carries no email claim.
var ErrMissingEmail = errors.New("token has no email claim")

// Verifier checks RS256 tokens issued by the identity provider.
type Verifier struct {
	client *Client

	mu  sync.Mutex
	key *rsa.PublicKey
}

// NewVerifier fetches the signing key from publicKeyURL on first use and
// caches it. A failed fetch is retried on the next request.
func NewVerifier(publicKeyURL string) *Verifier {
	return &Verifier{client: NewClient(publicKeyURL)}
}

// NewStaticVerifier trusts a key that is already known.
func NewStaticVerifier(key *rsa.PublicKey) *Verifier {
	return &Verifier{key: key}
}

func (v *Verifier) publicKey(ctx context.Context) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.key != nil {
		return v.key, nil
	}
	if v.client == nil {
		return nil, errors.New("no public key configured")
	}

	key, err := v.client.FetchPublicKey(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Fetched identity provider public key")
	v.key = key
	return key, nil
}

// Verify parses tokenString, checks its signature and expiry and returns
// the claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	publicKey, err := v.publicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}

	email, _ := mapClaims["email"].(string)
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	subject, _ := mapClaims.GetSubject()

	return &Claims{Email: email, Subject: subject, Raw: mapClaims}, nil
}
