package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/http/middlewares"
	"github.com/geocoder89/commenthub/internal/identity"
	"github.com/gin-gonic/gin"
)

type CommentBoard interface {
	List(ctx context.Context) ([]comment.Comment, error)
	Create(ctx context.Context, id identity.Identity, content string) (comment.Comment, error)
	Edit(ctx context.Context, id identity.Identity, commentID, content string) (comment.Comment, error)
	Delete(ctx context.Context, id identity.Identity, commentID string) (comment.Comment, error)
}

type CommentsHandler struct {
	comments CommentBoard
}

func NewCommentsHandler(comments CommentBoard) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

func (h *CommentsHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	comments, err := h.comments.List(cctx)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"comments": comments})
}

// Create is open to guests; a valid token only changes the recorded author.
func (h *CommentsHandler) Create(ctx *gin.Context) {
	var req comment.CreateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	c, err := h.comments.Create(cctx, middlewares.IdentityFromContext(ctx), req.Content)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"commentId": c.ID})
}

func (h *CommentsHandler) Edit(ctx *gin.Context) {
	var req comment.UpdateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	c, err := h.comments.Edit(cctx, middlewares.IdentityFromContext(ctx), ctx.Param("id"), req.Content)
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"comment": c})
}

func (h *CommentsHandler) Delete(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	c, err := h.comments.Delete(cctx, middlewares.IdentityFromContext(ctx), ctx.Param("id"))
	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}
