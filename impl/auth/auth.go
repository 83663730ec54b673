package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"classroom/entity"
)

// Auth issues and verifies the signed session tokens returned by password
// login. Tokens are HS256, short-lived, and opaque to the client.
type Auth struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	jwt.RegisteredClaims
}

func New(secret string, ttl time.Duration) (*Auth, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is empty")
	}
	return &Auth{secret: []byte(secret), ttl: ttl}, nil
}

func (a *Auth) IssueToken(subject, name, email, userType string) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:     name,
		Email:    email,
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Auth) VerifyToken(tokenString string) (*entity.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return &entity.Session{
		Subject:  claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		UserType: claims.UserType,
	}, nil
}
