package user

import "time"

func New(name, email, passwordHash string, role Role) User {
	now := time.Now().UTC()

	return User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
