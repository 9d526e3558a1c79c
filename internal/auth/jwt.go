package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskpulse-dev/taskpulse/internal/types"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the signed payload of a session credential.
type Claims struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	WorkspaceName string `json:"workspaceName"`
	JobTitle      string `json:"jobTitle"`
	jwt.RegisteredClaims
}

type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the issuance clock. Intended for tests.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	i.now = now
	return i
}

func (i *JWTIssuer) GenerateJWT(identity types.Identity) (string, error) {
	issuedAt := i.now()
	claims := Claims{
		ID:            identity.ID,
		Email:         identity.Email,
		Role:          identity.Role,
		WorkspaceName: identity.WorkspaceName,
		JobTitle:      identity.JobTitle,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *JWTIssuer) VerifyJWT(tokenString string) (types.Identity, error) {
	var claims Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(i.now))

	if err != nil || !token.Valid {
		return types.Identity{}, ErrInvalidToken
	}

	if claims.ID == "" || claims.WorkspaceName == "" {
		return types.Identity{}, ErrInvalidToken
	}

	return types.Identity{
		ID:            claims.ID,
		Email:         claims.Email,
		Role:          claims.Role,
		WorkspaceName: claims.WorkspaceName,
		JobTitle:      claims.JobTitle,
	}, nil
}
