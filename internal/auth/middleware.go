package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/models"
)

// Claims carried by the bearer token issued by the login service
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Authenticator turns a bearer token into the CurrentUser of the request
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator verifying HS256 tokens with secret
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Middleware rejects requests without a valid token and stores the user in the context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := httpx.RequestID(r.Context())

		tokenStr, err := extractBearerToken(r)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized: missing token", requestID)
			return
		}

		user, err := a.Parse(tokenStr)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized: invalid token", requestID)
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithUser(r.Context(), user)))
	})
}

// Parse validates tokenStr and returns the user it names
func (a *Authenticator) Parse(tokenStr string) (models.CurrentUser, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return models.CurrentUser{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return models.CurrentUser{}, errors.New("token has no subject")
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return models.CurrentUser{ID: claims.Subject, DisplayName: name}, nil
}

// Issue signs a token for the user, used by tooling and tests
func (a *Authenticator) Issue(user models.CurrentUser, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization format")
	}
	return parts[1], nil
}
