package domain

import "time"

// Role is the part a user plays on the platform.
type Role string

const (
	RoleReviewer   Role = "Reviewer"
	RoleResearcher Role = "Researcher"
	RoleBoth       Role = "Both"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleReviewer, RoleResearcher, RoleBoth:
		return true
	}
	return false
}

// Gender is an optional profile attribute.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// User is the credential record of one account plus its profile.
type User struct {
	ID              string
	Email           string
	MobileNumber    string
	PasswordHash    string
	Name            string
	Role            Role
	ProfilePic      string
	Gender          *Gender
	Age             *int
	Expertise       string
	OngoingProjects []string
	Institutions    []string
	Interests       []string
	SocialLinks     []string
	Visibility      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Public returns a copy of u without the password hash.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	cp.OngoingProjects = cloneStrings(u.OngoingProjects)
	cp.Institutions = cloneStrings(u.Institutions)
	cp.Interests = cloneStrings(u.Interests)
	cp.SocialLinks = cloneStrings(u.SocialLinks)
	return &cp
}

// ProfileUpdate lists the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name            *string
	Role            *Role
	Gender          *Gender
	Age             *int
	Expertise       *string
	OngoingProjects []string
	Institutions    []string
	Interests       []string
	SocialLinks     []string
	Visibility      *bool
	ProfilePic      *string
}

// Apply copies the set fields of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Gender != nil {
		g := *p.Gender
		u.Gender = &g
	}
	if p.Age != nil {
		a := *p.Age
		u.Age = &a
	}
	if p.Expertise != nil {
		u.Expertise = *p.Expertise
	}
	if p.OngoingProjects != nil {
		u.OngoingProjects = cloneStrings(p.OngoingProjects)
	}
	if p.Institutions != nil {
		u.Institutions = cloneStrings(p.Institutions)
	}
	if p.Interests != nil {
		u.Interests = cloneStrings(p.Interests)
	}
	if p.SocialLinks != nil {
		u.SocialLinks = cloneStrings(p.SocialLinks)
	}
	if p.Visibility != nil {
		u.Visibility = *p.Visibility
	}
	if p.ProfilePic != nil {
		u.ProfilePic = *p.ProfilePic
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
