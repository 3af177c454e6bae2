package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload carried by the session cookie. The role
// is trusted as of issue time; role changes take effect client-side only
// when a new token is issued.
type Claims struct {
	UserID uint   `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

const DefaultTTL = 7 * 24 * time.Hour

type Codec struct {
	Secret []byte
	TTL    time.Duration

	now func() time.Time
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{Secret: secret, TTL: ttl, now: time.Now}
}

func (c *Codec) Issue(userID uint, email, name, role string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.Secret)
}

// Verify returns the claims when the signature is valid and the token has
// not expired. Tampered, expired and malformed tokens are all reported the
// same way: callers treat ok=false as anonymous.
func (c *Codec) Verify(raw string) (*Claims, bool) {
	var claims Claims
	t, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.Secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !t.Valid {
		return nil, false
	}
	return &claims, true
}
