package security

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier checks bearer tokens issued by the external identity
// service. Verification only: this module never signs tokens.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

type Claims struct {
	Subject string
	Email   string
}

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

var errInvalidToken = errors.New("invalid token")

func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, errInvalidToken
	}

	return &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}
