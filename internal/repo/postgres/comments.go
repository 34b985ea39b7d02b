package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const commentColumns = `id, content, author_role, author_id, author_name, created_at, updated_at, deleted_at, is_deleted`

type CommentsRepo struct {
	pool *pgxpool.Pool
	obs  repo.Observer
}

func NewCommentsRepo(pool *pgxpool.Pool, obs repo.Observer) *CommentsRepo {
	return &CommentsRepo{pool: pool, obs: repo.OrNop(obs)}
}

func scanComment(row pgx.Row) (comment.Comment, error) {
	var c comment.Comment
	var role string
	var authorID, authorName *string

	err := row.Scan(
		&c.ID,
		&c.Content,
		&role,
		&authorID,
		&authorName,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
		&c.IsDeleted,
	)

	c.Author.Role = user.Role(role)
	if authorID != nil {
		c.Author.UserID = *authorID
	}
	if authorName != nil {
		c.Author.Name = *authorName
	}

	return c, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	err := r.obs.ObserveStore("comments.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO comments (`+commentColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.ID, c.Content, string(c.Author.Role), nullable(c.Author.UserID), nullable(c.Author.Name),
			c.CreatedAt, c.UpdatedAt, c.DeletedAt, c.IsDeleted,
		)
		return err
	})

	if err != nil {
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return comment.Comment{}, comment.ErrNotFound
	}

	var c comment.Comment

	err := r.obs.ObserveStore("comments.get_by_id", func() error {
		var err error
		c, err = scanComment(r.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) Update(ctx context.Context, id string, patch comment.Patch) (comment.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return comment.Comment{}, comment.ErrNotFound
	}

	var c comment.Comment

	err := r.obs.ObserveStore("comments.update", func() error {
		var err error
		c, err = scanComment(r.pool.QueryRow(ctx,
			`UPDATE comments
				SET content = COALESCE($2::text, content),
						is_deleted = COALESCE($3::boolean, is_deleted),
						deleted_at = COALESCE($4::timestamptz, deleted_at),
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+commentColumns,
			id, patch.Content, patch.IsDeleted, patch.DeletedAt,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) ListActive(ctx context.Context) ([]comment.Comment, error) {
	out := make([]comment.Comment, 0)

	err := r.obs.ObserveStore("comments.list_active", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+commentColumns+` FROM comments WHERE is_deleted = FALSE ORDER BY created_at DESC, id DESC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanComment(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
