package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"RetailPOS/app/models"
	"RetailPOS/app/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Token kinds
const (
	KindStaff   = "staff"
	KindShopper = "shopper"
)

const ctxClaimsKey = "claims"

// Claims identify the holder of a staff or shopper session
type Claims struct {
	Kind       string      `json:"kind"`
	Name       string      `json:"name,omitempty"`
	Role       models.Role `json:"role,omitempty"`
	CustomerID int64       `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. An empty secret is replaced by a random
// one, so tokens do not survive a restart.
func NewTokenIssuer(secret string, hours int) *TokenIssuer {
	if secret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = hex.EncodeToString(buf)
	}
	if hours <= 0 {
		hours = 12
	}
	return &TokenIssuer{secret: []byte(secret), ttl: time.Duration(hours) * time.Hour, now: time.Now}
}

// Issue signs claims, stamping issue and expiry times
func (t *TokenIssuer) Issue(claims Claims) (string, error) {
	now := t.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a signed token and returns its claims
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// requireSession accepts requests whose bearer token is of the given kind
// and still matches the open session slot in the store
func (s *Server) requireSession(kind string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization must be 'Bearer <token>'")
			}

			claims, err := s.tokens.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token").SetInternal(err)
			}
			if claims.Kind != kind {
				return echo.NewHTTPError(http.StatusForbidden, "token is not valid for this area")
			}

			open := services.Read(s.serial, func(store *services.Store) bool {
				switch kind {
				case KindStaff:
					u := store.StaffUser()
					return u != nil && u.Name == claims.Name
				default:
					c := store.Shopper()
					return c != nil && c.ID == claims.CustomerID
				}
			})
			if !open {
				return echo.NewHTTPError(http.StatusUnauthorized, "session has ended")
			}

			c.Set(ctxClaimsKey, claims)
			return next(c)
		}
	}
}

// requireRole limits a staff route to the given roles
func requireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ctxClaimsKey).(*Claims)
			if !ok || !slices.Contains(roles, claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "your role cannot perform this action")
			}
			return next(c)
		}
	}
}
