package middleware

import (
	"context"
	"errors"
	"strings"

	"launchpad/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Locals keys set by the auth middleware.
const (
	LocalUserID = "userID"
	LocalUser   = "user"
)

// Claims is the session token issued by the identity provider.
type Claims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Identity is the verified subject of a session token.
type Identity struct {
	Subject string
	Name    string
	Email   string
	Picture string
}

// IdentityResolver maps a verified identity onto a stored user, creating or
// refreshing the row as needed.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id Identity) (*models.User, error)
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// Auth verifies bearer tokens and attaches the caller to the request.
type Auth struct {
	cfg      AuthConfig
	resolver IdentityResolver
}

// NewAuth returns token middleware using resolver for identity sync.
func NewAuth(cfg AuthConfig, resolver IdentityResolver) *Auth {
	return &Auth{cfg: cfg, resolver: resolver}
}

var (
	errMissingToken = errors.New("authorization header required")
	errBadHeader    = errors.New("invalid authorization header format")
)

// Optional authenticates the request when a token is present. Anonymous
// requests pass through; a present but invalid token is rejected.
func (a *Auth) Optional(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if errors.Is(err, errMissingToken) {
		return c.Next()
	}
	if err != nil {
		return unauthenticated(c, err.Error())
	}
	if err := a.attach(c, token); err != nil {
		return unauthenticated(c, err.Error())
	}
	return c.Next()
}

// Required rejects requests without a valid token.
func (a *Auth) Required(c *fiber.Ctx) error {
	token, err := bearerToken(c)
	if err != nil {
		return unauthenticated(c, err.Error())
	}
	if err := a.attach(c, token); err != nil {
		return unauthenticated(c, err.Error())
	}
	return c.Next()
}

// WebSocket accepts the token from the "token" query parameter (browsers
// cannot set headers on upgrade requests) and falls back to the header.
func (a *Auth) WebSocket(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		var err error
		token, err = bearerToken(c)
		if err != nil {
			return unauthenticated(c, "token required")
		}
	}
	if err := a.attach(c, token); err != nil {
		return unauthenticated(c, err.Error())
	}
	return c.Next()
}

// ParseToken verifies tokenString and returns the identity it carries.
func (a *Auth) ParseToken(tokenString string) (Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	if a.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.cfg.Audience))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(a.cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return Identity{}, errors.New("invalid or expired token")
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("invalid token structure - missing subject")
	}

	return Identity{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	}, nil
}

func (a *Auth) attach(c *fiber.Ctx, tokenString string) error {
	id, err := a.ParseToken(tokenString)
	if err != nil {
		return err
	}

	user := &models.User{ID: id.Subject, Name: id.Name, Email: id.Email, Image: id.Picture}
	if a.resolver != nil {
		resolved, err := a.resolver.ResolveIdentity(c.UserContext(), id)
		if err != nil {
			Logger.ErrorContext(c.UserContext(), "identity sync failed", "user_id", id.Subject, "error", err)
			return errors.New("unable to resolve user")
		}
		user = resolved
	}

	c.Locals(LocalUserID, user.ID)
	c.Locals(LocalUser, user)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
	return nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", errMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errBadHeader
	}
	return parts[1], nil
}

func unauthenticated(c *fiber.Ctx, msg string) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthenticatedError(msg))
}

// CurrentUser returns the authenticated user attached to c, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)
	return u
}
