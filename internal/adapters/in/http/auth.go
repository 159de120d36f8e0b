package http

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"

	actorKey = "actor"
)

var errUnauthenticated = fmt.Errorf("%w: request carries no actor", errs.ErrUnauthorized)

// Actor is the authenticated caller as asserted by the identity provider.
type Actor struct {
	ID   kernel.UUID
	Role Role
}

// Claims are the identity provider's token claims; the subject is the actor id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens issued by the identity provider.
type Authenticator struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Authenticator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}, nil
}

// Parse validates raw and returns the actor it names.
func (a *Authenticator) Parse(raw string) (Actor, error) {
	claims := &Claims{}
	if _, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}); err != nil {
		return Actor{}, fmt.Errorf("parse token: %w", err)
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("token subject: %w", err)
	}

	role := Role(strings.ToLower(claims.Role))
	switch role {
	case RoleCustomer, RoleDriver, RoleAdmin:
	default:
		return Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	return Actor{ID: id, Role: role}, nil
}

// Require authenticates the request and admits only the given roles.
func (a *Authenticator) Require(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return writeError(c, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
			}

			actor, err := a.Parse(raw)
			if err != nil {
				return writeError(c, http.StatusUnauthorized, "unauthenticated", "invalid token")
			}
			if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
				return writeError(c, http.StatusForbidden, "forbidden", fmt.Sprintf("role %s may not call this operation", actor.Role))
			}

			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by Require.
func ActorFrom(c echo.Context) (Actor, bool) {
	actor, ok := c.Get(actorKey).(Actor)
	return actor, ok
}
