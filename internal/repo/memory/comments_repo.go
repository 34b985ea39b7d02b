package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/repo"
	"github.com/google/uuid"
)

type CommentsRepo struct {
	mu    sync.RWMutex
	items map[string]comment.Comment
	obs   repo.Observer
}

func NewCommentsRepo(obs repo.Observer) *CommentsRepo {
	return &CommentsRepo{
		items: make(map[string]comment.Comment),
		obs:   repo.OrNop(obs),
	}
}

func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	err := r.obs.ObserveStore("comments.create", func() error {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}

		r.mu.Lock()
		r.items[c.ID] = c
		r.mu.Unlock()
		return nil
	})

	if err != nil {
		return comment.Comment{}, err
	}
	return c, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	var c comment.Comment

	err := r.obs.ObserveStore("comments.get_by_id", func() error {
		r.mu.RLock()
		defer r.mu.RUnlock()

		found, ok := r.items[id]
		if !ok {
			return comment.ErrNotFound
		}
		c = found
		return nil
	})

	return c, err
}

func (r *CommentsRepo) Update(ctx context.Context, id string, patch comment.Patch) (comment.Comment, error) {
	var c comment.Comment

	err := r.obs.ObserveStore("comments.update", func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		found, ok := r.items[id]
		if !ok {
			return comment.ErrNotFound
		}

		patch.Apply(&found, time.Now().UTC())
		r.items[id] = found
		c = found
		return nil
	})

	return c, err
}

// ListActive returns comments that are not soft deleted, newest first.
func (r *CommentsRepo) ListActive(ctx context.Context) ([]comment.Comment, error) {
	out := make([]comment.Comment, 0)

	err := r.obs.ObserveStore("comments.list_active", func() error {
		r.mu.RLock()
		defer r.mu.RUnlock()

		for _, c := range r.items {
			if !c.IsDeleted {
				out = append(out, c)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *CommentsRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
