package dto

import (
	"time"

	"github.com/researchhive/hive-api/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	MobileNumber    string   `json:"mobile_number"`
	Password        string   `json:"password"`
	Role            string   `json:"role"`
	ProfilePic      string   `json:"profile_pic"`
	Gender          *string  `json:"gender"`
	Age             LooseInt `json:"age"`
	Expertise       string   `json:"expertise"`
	OngoingProjects []string `json:"ongoing_projects"`
	Institutions    []string `json:"institutions"`
	Interests       []string `json:"interests"`
	SocialLinks     []string `json:"social_links"`
	Visibility      *bool    `json:"visibility"`
}

// EmailLoginRequest payload for login by email.
type EmailLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MobileLoginRequest payload for login by mobile number.
type MobileLoginRequest struct {
	MobileNumber string `json:"mobile_number"`
	Password     string `json:"password"`
}

// UpdateProfileRequest carries the mutable profile fields. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name            *string  `json:"name"`
	Role            *string  `json:"role"`
	Gender          *string  `json:"gender"`
	Age             LooseInt `json:"age"`
	Expertise       *string  `json:"expertise"`
	OngoingProjects []string `json:"ongoing_projects"`
	Institutions    []string `json:"institutions"`
	Interests       []string `json:"interests"`
	SocialLinks     []string `json:"social_links"`
	Visibility      *bool    `json:"visibility"`
}

// UpdateProfilePicRequest carries a base64 data URI.
type UpdateProfilePicRequest struct {
	ProfilePic string `json:"profilePic"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	MobileNumber    string    `json:"mobile_number"`
	ProfilePic      string    `json:"profilePic"`
	Role            string    `json:"role"`
	Gender          *string   `json:"gender"`
	Age             *int      `json:"age"`
	Expertise       string    `json:"expertise"`
	OngoingProjects []string  `json:"ongoing_projects"`
	Institutions    []string  `json:"institutions"`
	Interests       []string  `json:"interests"`
	SocialLinks     []string  `json:"social_links"`
	Visibility      bool      `json:"visibility"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LoginResponse is the subset of profile fields returned by both login variants.
type LoginResponse struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	MobileNumber string  `json:"mobile_number"`
	ProfilePic   string  `json:"profilePic"`
	Gender       *string `json:"gender"`
}

// MessageResponse is used for plain acknowledgements and errors.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileUpdatedResponse wraps an updated profile.
type ProfileUpdatedResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// NewUserResponse maps a domain user to its public representation.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		MobileNumber:    u.MobileNumber,
		ProfilePic:      u.ProfilePic,
		Role:            string(u.Role),
		Gender:          genderString(u.Gender),
		Age:             u.Age,
		Expertise:       u.Expertise,
		OngoingProjects: orEmpty(u.OngoingProjects),
		Institutions:    orEmpty(u.Institutions),
		Interests:       orEmpty(u.Interests),
		SocialLinks:     orEmpty(u.SocialLinks),
		Visibility:      u.Visibility,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// NewLoginResponse maps a domain user to the login payload.
func NewLoginResponse(u *domain.User) LoginResponse {
	return LoginResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		MobileNumber: u.MobileNumber,
		ProfilePic:   u.ProfilePic,
		Gender:       genderString(u.Gender),
	}
}

func genderString(g *domain.Gender) *string {
	if g == nil {
		return nil
	}
	v := string(*g)
	return &v
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
