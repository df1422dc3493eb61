package middleware

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/dolinear/dolinear-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the profile claims carried by Auth0 access tokens
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the verified token identity
	IdentityKey contextKey = "identity"
	// UserIDKey is the context key for the resolved user id
	UserIDKey contextKey = "user_id"
)

// TokenValidator verifies a bearer token and returns the identity it carries
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Identity, error)
}

// UserResolver maps a verified identity onto a user row
type UserResolver interface {
	EnsureUser(ctx context.Context, id domain.Identity) (*domain.User, error)
}

// Auth0Validator validates RS256 tokens against an Auth0 tenant's JWKS
type Auth0Validator struct {
	validator *validator.Validator
}

// NewAuth0Validator creates a validator for the given Auth0 domain and audience
func NewAuth0Validator(auth0Domain, audience string) (*Auth0Validator, error) {
	issuerURL, err := url.Parse("https://" + auth0Domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0Validator{validator: jwtValidator}, nil
}

// ValidateToken implements TokenValidator
func (v *Auth0Validator) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", claims)
	}

	id := &domain.Identity{Subject: validated.RegisteredClaims.Subject}
	if custom, ok := validated.CustomClaims.(*CustomClaims); ok {
		id.Email = custom.Email
		id.Name = custom.Name
		id.Picture = custom.Picture
	}
	return id, nil
}

// AuthMiddleware authenticates bearer tokens and resolves them to users
type AuthMiddleware struct {
	validator TokenValidator
	users     UserResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(v TokenValidator, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{validator: v, users: users}
}

// Authenticate returns an Echo middleware that validates the bearer token,
// upserts the user and stores both identity and user id in the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			ctx := c.Request().Context()
			identity, err := m.validator.ValidateToken(ctx, parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid token")
			}

			user, err := m.users.EnsureUser(ctx, *identity)
			if err != nil {
				if domain.KindOf(err) == domain.KindUnauthorized {
					return unauthorizedError(c, err.Error())
				}
				log.Error().Err(err).Str("subject", identity.Subject).Msg("Failed to resolve user")
				return err
			}

			ctx = context.WithValue(ctx, IdentityKey, identity)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserID extracts the authenticated user id from the context
func GetUserID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetIdentity extracts the verified token identity from the context
func GetIdentity(c echo.Context) *domain.Identity {
	if id, ok := c.Request().Context().Value(IdentityKey).(*domain.Identity); ok {
		return id
	}
	return nil
}

// WithUserID returns a copy of ctx carrying userID, for tests and internal callers
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
