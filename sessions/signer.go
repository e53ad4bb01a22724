package sessions

import (
	"crypto/sha256"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

// cookieKeyInfo binds derived keys to their use.
const cookieKeyInfo = "crm-connector session cookie v1"

// Signer signs and verifies session cookie values. A value is an HS256 JWT
// whose subject is the session ID.
type Signer struct {
	key     []byte
	nowFunc func() time.Time
}

// NewSigner derives a 256-bit HMAC key from secret with HKDF-SHA256.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(cookieKeyInfo)), key); err != nil {
		return nil, errors.Wrap(err, "failed to derive session cookie key")
	}
	return &Signer{key: key, nowFunc: time.Now}, nil
}

func (s *Signer) Sign(sessionID string, maxAge time.Duration) (string, error) {
	now := s.nowFunc()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session cookie")
	}
	return signed, nil
}

// Verify returns the session ID carried by a valid, unexpired value.
func (s *Signer) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, s.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil {
		return "", errors.Wrap(err, "invalid session cookie")
	}
	if claims.Subject == "" {
		return "", errors.New("session cookie has no subject")
	}
	return claims.Subject, nil
}

func (s *Signer) verificationKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.key, nil
}
