package session

import "time"

// UserRole is the user's role
type UserRole string

const (
	// RoleEmployee browses and requests assets
	RoleEmployee UserRole = "employee"
	// RoleHR manages inventory, requests and the team roster
	RoleHR UserRole = "hr"
)

// User is the backend-authoritative identity record. Server-computed fields
// like CurrentEmployees are never recomputed client-side.
type User struct {
	ID               string     `json:"_id,omitempty"`
	Name             string     `json:"name,omitempty"`
	Email            string     `json:"email,omitempty"`
	Role             UserRole   `json:"role,omitempty"`
	ProfileImage     string     `json:"profileImage,omitempty"`
	CompanyName      string     `json:"companyName,omitempty"`
	CompanyLogo      string     `json:"companyLogo,omitempty"`
	PackageLimit     int        `json:"packageLimit,omitempty"`
	CurrentEmployees int        `json:"currentEmployees,omitempty"`
	Subscription     string     `json:"subscription,omitempty"`
	DateOfBirth      string     `json:"dateOfBirth,omitempty"`
	CreatedAt        *time.Time `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a copy so callers cannot mutate the Coordinator's record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		c.CreatedAt = &t
	}
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// IsHR reports whether the user holds the HR manager role.
func (u *User) IsHR() bool {
	return u != nil && u.Role == RoleHR
}

// IsEmployee reports whether the user holds the employee role.
func (u *User) IsEmployee() bool {
	return u != nil && u.Role == RoleEmployee
}
