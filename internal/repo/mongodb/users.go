package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/repo"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

// userDoc keeps the field names of the existing users collection.
type userDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"`
	UserType  string        `bson:"userType"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
	DeletedAt *time.Time    `bson:"deletedAt,omitempty"`
	IsDeleted bool          `bson:"isDeleted"`
	IsBanned  bool          `bson:"isBanned"`
}

func (d userDoc) toDomain() user.User {
	return user.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         user.Role(d.UserType),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		DeletedAt:    d.DeletedAt,
		IsDeleted:    d.IsDeleted,
		IsBanned:     d.IsBanned,
	}
}

type UsersRepo struct {
	coll *mongo.Collection
	obs  repo.Observer
}

func NewUsersRepo(db *mongo.Database, obs repo.Observer) *UsersRepo {
	return &UsersRepo{coll: db.Collection(usersCollection), obs: repo.OrNop(obs)}
}

// emailCollation compares emails case-insensitively, so accounts stored with
// mixed-case addresses are still found by the lowercased lookup key.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

// EnsureIndexes creates the unique email index the registration flow relies on.
// It has its own name so it can sit beside a plain email_1 index.
func (r *UsersRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_ci_unique").
			SetUnique(true).
			SetCollation(emailCollation),
	})
	return err
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	doc := userDoc{
		ID:        bson.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		UserType:  string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		DeletedAt: u.DeletedAt,
		IsDeleted: u.IsDeleted,
		IsBanned:  u.IsBanned,
	}

	err := r.obs.ObserveStore("users.create", func() error {
		_, err := r.coll.InsertOne(ctx, doc)
		return err
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	return r.findOne(ctx, "users.get_by_id", bson.D{{Key: "_id", Value: oid}})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_email", bson.D{{Key: "email", Value: email}},
		options.FindOne().SetCollation(emailCollation))
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.D, opts ...options.Lister[options.FindOneOptions]) (user.User, error) {
	var doc userDoc

	err := r.obs.ObserveStore(op, func() error {
		return r.coll.FindOne(ctx, filter, opts...).Decode(&doc)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return doc.toDomain(), nil
}

func userPatchSet(patch user.Patch) bson.D {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}

	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *patch.PasswordHash})
	}
	if patch.IsBanned != nil {
		set = append(set, bson.E{Key: "isBanned", Value: *patch.IsBanned})
	}
	if patch.IsDeleted != nil {
		set = append(set, bson.E{Key: "isDeleted", Value: *patch.IsDeleted})
	}
	if patch.DeletedAt != nil {
		set = append(set, bson.E{Key: "deletedAt", Value: *patch.DeletedAt})
	}

	return set
}

// Update patches the document and returns it as stored after the write.
func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	var doc userDoc

	err = r.obs.ObserveStore("users.update", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.D{{Key: "_id", Value: oid}},
			bson.D{{Key: "$set", Value: userPatchSet(patch)}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return doc.toDomain(), nil
}

func (r *UsersRepo) ListByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	var docs []userDoc

	err := r.obs.ObserveStore("users.list_by_role", func() error {
		cur, err := r.coll.Find(ctx,
			bson.D{{Key: "userType", Value: string(role)}},
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

	out := make([]user.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}

	return out, nil
}
