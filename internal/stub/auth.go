package stub

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type claims struct {
	Username string `json:"username"`
	jwt.StandardClaims
}

type contextKey string

const userContextKey = contextKey("user")

func (s *Server) generateToken(username string) (string, error) {
	c := &claims{
		Username: username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(s.jwtKey)
}

// authMiddleware verifies the bearer token and puts the username on the
// request context. The error body matches what the real backend sends, so
// the client's 401 handling sees the same shape either way.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Authorization header must contain two space-delimited values")
			return
		}

		c := &claims{}
		token, err := jwt.ParseWithClaims(parts[1], c, func(*jwt.Token) (interface{}, error) {
			return s.jwtKey, nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, c.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func usernameFromContext(ctx context.Context) string {
	if username, ok := ctx.Value(userContextKey).(string); ok {
		return username
	}
	return ""
}
