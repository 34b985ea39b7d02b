package comment

import (
	"errors"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/user"
)

// MinContentLength is the shortest content accepted on create and edit.
const MinContentLength = 5

var (
	ErrNotFound     = errors.New("comment not found")
	ErrContentShort = errors.New("content must be at least 5 characters")
)

// Author is a snapshot taken when the comment is created; it is never re-joined
// against the live user record.
type Author struct {
	Role   user.Role `json:"userType"`
	UserID string    `json:"id,omitempty"`
	Name   string    `json:"name,omitempty"`
}

func (a Author) IsGuest() bool {
	return a.UserID == ""
}

type Comment struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Author    Author     `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	IsDeleted bool       `json:"isDeleted"`
}

type Patch struct {
	Content   *string
	IsDeleted *bool
	DeletedAt *time.Time
}

func (p Patch) Apply(c *Comment, now time.Time) {
	if p.Content != nil {
		c.Content = *p.Content
	}
	if p.IsDeleted != nil {
		c.IsDeleted = *p.IsDeleted
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	c.UpdatedAt = now
}

func ValidateContent(content string) error {
	if len([]rune(content)) < MinContentLength {
		return ErrContentShort
	}
	return nil
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=5"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=5"`
}
