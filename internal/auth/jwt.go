package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

type JWT struct {
	secret []byte
	now    func() time.Time
}

func NewJWT(secret string) *JWT {
	return &JWT{secret: []byte(secret), now: time.Now}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for the user valid for ttl.
func (j *JWT) Sign(userID, email string, ttl time.Duration) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(ttl)
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString(j.secret)
	return signed, exp, err
}

// Verify returns the subject and email of a valid, unexpired token.
func (j *JWT) Verify(tokenStr string) (userID, email string, err error) {
	var c claims
	t, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil || !t.Valid {
		return "", "", errInvalidToken
	}
	if c.Subject == "" {
		return "", "", errors.New("missing sub")
	}
	return c.Subject, c.Email, nil
}
