package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/researchhive/hive-api/internal/domain"
	"github.com/researchhive/hive-api/internal/repository"
	apperrors "github.com/researchhive/hive-api/pkg/util"
)

const identityKey = "auth_identity"

// UserLookup resolves a token subject to its credential record.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware validates session cookies and loads the caller's identity.
type AuthMiddleware struct {
	tokens  *TokenManager
	cookies *SessionCookie
	users   UserLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, cookies *SessionCookie, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, cookies: cookies, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := m.cookies.Read(c)
	if token == "" {
		return apperrors.NewUnauthorized("Unauthorized. No Token is provided")
	}

	subject, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return apperrors.NewUnauthorized("Unauthorized. Token has expired")
		}
		return apperrors.NewUnauthorized("Unauthorized. Token is invalid")
	}

	user, err := m.users.GetByID(c.UserContext(), subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("User")
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(identityKey, user.Public())
	return c.Next()
}

// IdentityFromContext retrieves the authenticated user attached by Handle.
func IdentityFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(identityKey).(*domain.User)
	return user, ok && user != nil
}
