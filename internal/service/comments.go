package service

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/geocoder89/commenthub/internal/policy"
)

type CommentService struct {
	comments CommentStore
}

func NewCommentService(comments CommentStore) *CommentService {
	return &CommentService{comments: comments}
}

// Create accepts any caller. The author is a guest unless the identity resolved
// to a stored user, in which case role, id and name are copied onto the comment.
func (s *CommentService) Create(ctx context.Context, id identity.Identity, content string) (comment.Comment, error) {
	if err := comment.ValidateContent(content); err != nil {
		return comment.Comment{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	author := comment.Author{Role: user.RoleGuest}
	if id.HasRecord() {
		author = comment.Author{Role: id.Role, UserID: id.UserID, Name: id.User.Name}
	}

	return s.comments.Create(ctx, comment.New(content, author))
}

func (s *CommentService) List(ctx context.Context) ([]comment.Comment, error) {
	return s.comments.ListActive(ctx)
}

func (s *CommentService) Edit(ctx context.Context, id identity.Identity, commentID, content string) (comment.Comment, error) {
	if err := comment.ValidateContent(content); err != nil {
		return comment.Comment{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if _, err := s.authorize(ctx, id, commentID); err != nil {
		return comment.Comment{}, err
	}

	return s.comments.Update(ctx, commentID, comment.Patch{Content: &content})
}

func (s *CommentService) Delete(ctx context.Context, id identity.Identity, commentID string) (comment.Comment, error) {
	if _, err := s.authorize(ctx, id, commentID); err != nil {
		return comment.Comment{}, err
	}

	deleted := true
	now := time.Now().UTC()
	return s.comments.Update(ctx, commentID, comment.Patch{IsDeleted: &deleted, DeletedAt: &now})
}

func (s *CommentService) authorize(ctx context.Context, id identity.Identity, commentID string) (comment.Comment, error) {
	if id.IsGuest() {
		return comment.Comment{}, identity.ErrMissingToken
	}

	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return comment.Comment{}, err
	}

	if err := policy.Moderate(id, c.Author.UserID); err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}
