package user

import (
	"errors"
	"time"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var roleRank = map[Role]int{
	RoleGuest: 0,
	RoleUser:  1,
	RoleAdmin: 2,
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email is already in use")
)

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above threshold. Unknown roles rank below guest.
func (r Role) AtLeast(threshold Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[threshold]
	if !ok {
		return false
	}
	return have >= want
}

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never expose hash in JSON
	Role         Role       `json:"userType"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	IsDeleted    bool       `json:"isDeleted"`
	IsBanned     bool       `json:"isBanned"`
}

// Patch is a partial update; nil fields are left untouched by the store.
type Patch struct {
	Name         *string
	PasswordHash *string
	IsBanned     *bool
	IsDeleted    *bool
	DeletedAt    *time.Time
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.PasswordHash == nil && p.IsBanned == nil && p.IsDeleted == nil && p.DeletedAt == nil
}

// Apply mutates u in place and stamps UpdatedAt.
func (p Patch) Apply(u *User, now time.Time) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.IsBanned != nil {
		u.IsBanned = *p.IsBanned
	}
	if p.IsDeleted != nil {
		u.IsDeleted = *p.IsDeleted
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		u.DeletedAt = &t
	}
	u.UpdatedAt = now
}

// Disabled covers both soft deleted and banned accounts.
func (u User) Disabled() bool {
	return u.IsDeleted || u.IsBanned
}
