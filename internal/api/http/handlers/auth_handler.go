package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/researchhive/hive-api/internal/api/dto"
	"github.com/researchhive/hive-api/internal/auth"
	"github.com/researchhive/hive-api/internal/service"
	apperrors "github.com/researchhive/hive-api/pkg/util"
)

// AuthHandler exposes account and session endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.SessionCookie
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.SessionCookie) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := parseProfileBody(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		MobileNumber:    req.MobileNumber,
		Password:        req.Password,
		Role:            req.Role,
		ProfilePic:      req.ProfilePic,
		Gender:          req.Gender,
		Age:             req.Age.Ptr(),
		Expertise:       req.Expertise,
		OngoingProjects: req.OngoingProjects,
		Institutions:    req.Institutions,
		Interests:       req.Interests,
		SocialLinks:     req.SocialLinks,
		Visibility:      req.Visibility,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewUserResponse(user))
}

// LoginByEmail handles POST /auth/login-by-email.
func (h *AuthHandler) LoginByEmail(c *fiber.Ctx) error {
	var req dto.EmailLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidCredentials()
	}
	return h.login(c, service.LoginInput{
		Method:     service.LoginByEmail,
		Identifier: req.Email,
		Password:   req.Password,
	})
}

// LoginByMobile handles POST /auth/login-by-mobile.
func (h *AuthHandler) LoginByMobile(c *fiber.Ctx) error {
	var req dto.MobileLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidCredentials()
	}
	return h.login(c, service.LoginInput{
		Method:     service.LoginByMobile,
		Identifier: req.MobileNumber,
		Password:   req.Password,
	})
}

func (h *AuthHandler) login(c *fiber.Ctx, in service.LoginInput) error {
	in.ClientKey = c.IP()
	user, token, _, err := h.auth.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	h.cookies.Set(c, token)
	return c.JSON(dto.NewLoginResponse(user))
}

// Logout handles POST /auth/logout. It succeeds with or without a session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := h.cookies.Read(c); token != "" {
		if subject, err := h.auth.TokenManager().Verify(token); err == nil {
			h.auth.Logout(c.UserContext(), subject)
		}
	}
	h.cookies.Clear(c)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully."})
}

// Check handles GET /auth/check.
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized. No Token is provided")
	}
	return c.JSON(dto.NewUserResponse(user))
}

// UpdateProfile handles PUT /auth/update-profile and /auth/update-user-data.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized. No Token is provided")
	}
	var req dto.UpdateProfileRequest
	if err := parseProfileBody(c, &req); err != nil {
		return err
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), caller.ID, service.ProfileInput{
		Name:            req.Name,
		Role:            req.Role,
		Gender:          req.Gender,
		Age:             req.Age.Ptr(),
		Expertise:       req.Expertise,
		OngoingProjects: req.OngoingProjects,
		Institutions:    req.Institutions,
		Interests:       req.Interests,
		SocialLinks:     req.SocialLinks,
		Visibility:      req.Visibility,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.ProfileUpdatedResponse{
		Message: "User profile updated successfully",
		User:    dto.NewUserResponse(user),
	})
}

// UpdateProfilePic handles PUT /auth/update-profile-pic.
func (h *AuthHandler) UpdateProfilePic(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized. No Token is provided")
	}
	var req dto.UpdateProfilePicRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}

	user, err := h.auth.UpdateProfilePic(c.UserContext(), caller.ID, req.ProfilePic)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProfileUpdatedResponse{
		Message: "Updated user profile picture",
		User:    dto.NewUserResponse(user),
	})
}

func parseProfileBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		if errors.Is(err, dto.ErrInvalidNumber) {
			return apperrors.NewValidationError("Age must be a valid number")
		}
		return apperrors.NewValidationError("Invalid request body")
	}
	return nil
}
