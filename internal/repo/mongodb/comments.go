package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/comment"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/repo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const commentsCollection = "comments"

type authorDoc struct {
	UserType string         `bson:"userType"`
	ID       *bson.ObjectID `bson:"id,omitempty"`
	Name     string         `bson:"name,omitempty"`
}

type commentDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Content   string        `bson:"content"`
	User      authorDoc     `bson:"user"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
	DeletedAt *time.Time    `bson:"deletedAt,omitempty"`
	IsDeleted bool          `bson:"isDeleted"`
}

func (d commentDoc) toDomain() comment.Comment {
	author := comment.Author{Role: user.Role(d.User.UserType), Name: d.User.Name}
	if d.User.ID != nil {
		author.UserID = d.User.ID.Hex()
	}

	return comment.Comment{
		ID:        d.ID.Hex(),
		Content:   d.Content,
		Author:    author,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		DeletedAt: d.DeletedAt,
		IsDeleted: d.IsDeleted,
	}
}

type CommentsRepo struct {
	coll *mongo.Collection
	obs  repo.Observer
}

func NewCommentsRepo(db *mongo.Database, obs repo.Observer) *CommentsRepo {
	return &CommentsRepo{coll: db.Collection(commentsCollection), obs: repo.OrNop(obs)}
}

func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	doc := commentDoc{
		ID:        bson.NewObjectID(),
		Content:   c.Content,
		User:      authorDoc{UserType: string(c.Author.Role), Name: c.Author.Name},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		DeletedAt: c.DeletedAt,
		IsDeleted: c.IsDeleted,
	}

	if !c.Author.IsGuest() {
		oid, err := bson.ObjectIDFromHex(c.Author.UserID)
		if err != nil {
			return comment.Comment{}, err
		}
		doc.User.ID = &oid
	}

	err := r.obs.ObserveStore("comments.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})

	if err != nil {
		return comment.Comment{}, err
	}

	return doc.toDomain(), nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (comment.Comment, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return comment.Comment{}, comment.ErrNotFound
	}

	var doc commentDoc

	err = r.obs.ObserveStore("comments.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return doc.toDomain(), nil
}

func (r *CommentsRepo) Update(ctx context.Context, id string, patch comment.Patch) (comment.Comment, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return comment.Comment{}, comment.ErrNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if patch.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *patch.Content})
	}
	if patch.IsDeleted != nil {
		set = append(set, bson.E{Key: "isDeleted", Value: *patch.IsDeleted})
	}
	if patch.DeletedAt != nil {
		set = append(set, bson.E{Key: "deletedAt", Value: *patch.DeletedAt})
	}

	var doc commentDoc

	err = r.obs.ObserveStore("comments.update", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.D{{Key: "_id", Value: oid}},
			bson.D{{Key: "$set", Value: set}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return comment.Comment{}, comment.ErrNotFound
		}
		return comment.Comment{}, err
	}

	return doc.toDomain(), nil
}

func (r *CommentsRepo) ListActive(ctx context.Context) ([]comment.Comment, error) {
	var docs []commentDoc

	err := r.obs.ObserveStore("comments.list_active", func() error {
		cur, err := r.coll.Find(ctx,
			bson.D{{Key: "isDeleted", Value: false}},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		)
		if err != nil {
			return err
		}
		return cur.All(ctx, &docs)
	})

	if err != nil {
		return nil, err
	}

	out := make([]comment.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}

	return out, nil
}
