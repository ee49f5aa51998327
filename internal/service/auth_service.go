package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/researchhive/hive-api/internal/auth"
	"github.com/researchhive/hive-api/internal/domain"
	"github.com/researchhive/hive-api/internal/events"
	"github.com/researchhive/hive-api/internal/media"
	"github.com/researchhive/hive-api/internal/repository"
	apperrors "github.com/researchhive/hive-api/pkg/util"
)

// LoginMethod selects which identifier a login uses.
type LoginMethod string

const (
	LoginByEmail  LoginMethod = "email"
	LoginByMobile LoginMethod = "mobile"
)

// SignupInput is the validated signup payload.
type SignupInput struct {
	Name            string `validate:"notblank"`
	Email           string `validate:"notblank,email"`
	MobileNumber    string `validate:"len=13"`
	Password        string `validate:"password"`
	Role            string `validate:"notblank,oneof=Reviewer Researcher Both"`
	ProfilePic      string
	Gender          *string `validate:"omitnil,oneof=Male Female Other"`
	Age             *int    `validate:"omitnil,min=0"`
	Expertise       string
	OngoingProjects []string `validate:"omitempty,dive,notblank"`
	Institutions    []string `validate:"omitempty,dive,notblank"`
	Interests       []string `validate:"omitempty,dive,notblank"`
	SocialLinks     []string
	Visibility      *bool
}

func (in *SignupInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.MobileNumber = strings.TrimSpace(in.MobileNumber)
	in.Role = strings.TrimSpace(in.Role)
	in.Expertise = strings.TrimSpace(in.Expertise)
}

// LoginInput identifies the caller by email or mobile number.
type LoginInput struct {
	Method     LoginMethod
	Identifier string `validate:"notblank"`
	Password   string `validate:"required"`

	// ClientKey scopes login throttling, normally the client IP.
	ClientKey string
}

// ProfileInput lists mutable profile fields; nil means unchanged.
type ProfileInput struct {
	Name            *string  `validate:"omitnil,notblank"`
	Role            *string  `validate:"omitnil,oneof=Reviewer Researcher Both"`
	Gender          *string  `validate:"omitnil,oneof=Male Female Other"`
	Age             *int     `validate:"omitnil,gt=0"`
	Expertise       *string  `validate:"omitnil,notblank"`
	OngoingProjects []string `validate:"omitempty,dive,notblank"`
	Institutions    []string `validate:"omitempty,dive,notblank"`
	Interests       []string `validate:"omitempty,dive,notblank"`
	SocialLinks     []string
	Visibility      *bool
}

func (in ProfileInput) toUpdate() domain.ProfileUpdate {
	update := domain.ProfileUpdate{
		Name:            trimmed(in.Name),
		Expertise:       trimmed(in.Expertise),
		Age:             in.Age,
		OngoingProjects: in.OngoingProjects,
		Institutions:    in.Institutions,
		Interests:       in.Interests,
		SocialLinks:     in.SocialLinks,
		Visibility:      in.Visibility,
	}
	if in.Role != nil {
		r := domain.Role(*in.Role)
		update.Role = &r
	}
	if in.Gender != nil {
		g := domain.Gender(*in.Gender)
		update.Gender = &g
	}
	return update
}

// AuthService coordinates account lifecycle flows.
type AuthService struct {
	users    repository.UserRepository
	hasher   *auth.PasswordHasher
	tokenMgr *auth.TokenManager
	uploader media.Uploader
	throttle auth.LoginThrottle
	events   events.Dispatcher
	logger   *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.PasswordHasher
	Tokens     *auth.TokenManager
	Uploader   media.Uploader
	Throttle   auth.LoginThrottle
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	s := &AuthService{
		users:    deps.UserRepo,
		hasher:   deps.Hasher,
		tokenMgr: deps.Tokens,
		uploader: deps.Uploader,
		throttle: deps.Throttle,
		events:   deps.Dispatcher,
		logger:   deps.Logger,
	}
	if s.uploader == nil {
		s.uploader = media.Disabled{}
	}
	if s.throttle == nil {
		s.throttle = auth.NoopThrottle{}
	}
	if s.events == nil {
		s.events = events.NewInMemoryDispatcher()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Signup creates a new account. It does not start a session.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	// The unique constraint on insert is authoritative; this only gives a
	// friendlier answer in the common case.
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var profilePic string
	if strings.TrimSpace(in.ProfilePic) != "" {
		profilePic, err = s.upload(ctx, in.ProfilePic)
		if err != nil {
			return nil, err
		}
	}

	user := &domain.User{
		Email:           in.Email,
		MobileNumber:    in.MobileNumber,
		PasswordHash:    hash,
		Name:            in.Name,
		Role:            domain.Role(in.Role),
		ProfilePic:      profilePic,
		Age:             in.Age,
		Expertise:       in.Expertise,
		OngoingProjects: in.OngoingProjects,
		Institutions:    in.Institutions,
		Interests:       in.Interests,
		SocialLinks:     in.SocialLinks,
		Visibility:      in.Visibility == nil || *in.Visibility,
	}
	if in.Gender != nil {
		g := domain.Gender(*in.Gender)
		user.Gender = &g
	}

	if err := s.users.Create(ctx, user); err != nil {
		s.discardUpload(ctx, profilePic)
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			if dup.Field == "mobile_number" {
				return nil, apperrors.NewConflict("Mobile number already exists")
			}
			return nil, apperrors.NewConflict("Email already exists")
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{Type: events.EventUserSignedUp, UserID: user.ID})
	return user.Public(), nil
}

// Login verifies credentials and issues a session token. Unknown identifiers
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, string, domain.Session, error) {
	if err := validateInput(in); err != nil {
		return nil, "", domain.Session{}, apperrors.NewInvalidCredentials()
	}

	if in.ClientKey != "" {
		allowed, wait, err := s.throttle.Allow(ctx, in.ClientKey)
		if err != nil {
			s.logger.Warn("login throttle unavailable", zap.Error(err))
		} else if !allowed {
			return nil, "", domain.Session{}, apperrors.NewTooManyRequests(
				"Too many failed login attempts. Try again in " + wait.Round(time.Second).String())
		}
	}

	var (
		user *domain.User
		err  error
	)
	switch in.Method {
	case LoginByMobile:
		user, err = s.users.GetByMobile(ctx, strings.TrimSpace(in.Identifier))
	default:
		user, err = s.users.GetByEmail(ctx, normalizeEmail(in.Identifier))
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Equalize(in.Password)
			s.recordFailure(ctx, in.ClientKey)
			return nil, "", domain.Session{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", domain.Session{}, apperrors.NewInternalError(err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("corrupt credential record", zap.String("user_id", user.ID), zap.Error(err))
		return nil, "", domain.Session{}, apperrors.NewCorruptCredential(err)
	}
	if !ok {
		s.recordFailure(ctx, in.ClientKey)
		return nil, "", domain.Session{}, apperrors.NewInvalidCredentials()
	}

	token, session, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, "", domain.Session{}, apperrors.NewInternalError(err)
	}

	if in.ClientKey != "" {
		if err := s.throttle.Reset(ctx, in.ClientKey); err != nil {
			s.logger.Warn("reset login throttle", zap.Error(err))
		}
	}
	s.publish(ctx, events.Event{
		Type:    events.EventUserLoggedIn,
		UserID:  user.ID,
		Payload: events.LoginPayload{Method: string(in.Method)},
	})
	return user.Public(), token, session, nil
}

// Logout records the logout. Session tokens are stateless; the transport
// layer discards the cookie.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	s.publish(ctx, events.Event{Type: events.EventUserLoggedOut, UserID: userID})
}

// UpdateProfile applies in to the caller's own record.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateProfile(ctx, userID, in.toUpdate())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.Event{Type: events.EventProfileUpdated, UserID: userID})
	return user.Public(), nil
}

// UpdateProfilePic uploads image and stores its URL on the caller's record.
func (s *AuthService) UpdateProfilePic(ctx context.Context, userID, image string) (*domain.User, error) {
	if strings.TrimSpace(image) == "" {
		return nil, apperrors.NewValidationError("Profile pic is required")
	}
	url, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}
	user, err := s.users.UpdateProfile(ctx, userID, domain.ProfileUpdate{ProfilePic: &url})
	if err != nil {
		s.discardUpload(ctx, url)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.Event{Type: events.EventProfilePicUpdated, UserID: userID})
	return user.Public(), nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) upload(ctx context.Context, image string) (string, error) {
	url, err := s.uploader.UploadImage(ctx, image)
	switch {
	case err == nil:
		return url, nil
	case errors.Is(err, media.ErrUploadsDisabled),
		errors.Is(err, media.ErrInvalidImage),
		errors.Is(err, media.ErrImageTooLarge):
		return "", apperrors.NewValidationError(err.Error())
	default:
		return "", apperrors.NewInternalError(err)
	}
}

// discardUpload removes an image whose record was never written.
func (s *AuthService) discardUpload(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.uploader.DeleteImage(ctx, url); err != nil {
		s.logger.Warn("discard orphaned upload", zap.String("url", url), zap.Error(err))
	}
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.throttle.Fail(ctx, key); err != nil {
		s.logger.Warn("record login failure", zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
