package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/repo"
	"github.com/google/uuid"
)

type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // {"id": user}
	byEmail map[string]string    // {"email": id}
	obs     repo.Observer
}

func NewUsersRepo(obs repo.Observer) *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
		obs:     repo.OrNop(obs),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.obs.ObserveStore("users.create", func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		key := emailKey(u.Email)
		if _, taken := r.byEmail[key]; taken {
			return user.ErrEmailTaken
		}

		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		r.items[u.ID] = u
		r.byEmail[key] = u.ID
		return nil
	})

	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveStore("users.get_by_id", func() error {
		r.mu.RLock()
		defer r.mu.RUnlock()

		found, ok := r.items[id]
		if !ok {
			return user.ErrNotFound
		}
		u = found
		return nil
	})

	return u, err
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.obs.ObserveStore("users.get_by_email", func() error {
		r.mu.RLock()
		defer r.mu.RUnlock()

		id, ok := r.byEmail[emailKey(email)]
		if !ok {
			return user.ErrNotFound
		}
		u = r.items[id]
		return nil
	})

	return u, err
}

func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var u user.User

	err := r.obs.ObserveStore("users.update", func() error {
		r.mu.Lock()
		defer r.mu.Unlock()

		found, ok := r.items[id]
		if !ok {
			return user.ErrNotFound
		}

		patch.Apply(&found, time.Now().UTC())
		r.items[id] = found
		u = found
		return nil
	})

	return u, err
}

// ListByRole returns users newest first.
func (r *UsersRepo) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	out := make([]user.User, 0)

	err := r.obs.ObserveStore("users.list_by_role", func() error {
		r.mu.RLock()
		defer r.mu.RUnlock()

		for _, u := range r.items {
			if u.Role == role {
				out = append(out, u)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UsersRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
