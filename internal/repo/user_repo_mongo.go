package repo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/internal/domain"
)

// ErrDuplicateEmail maps the unique email index violation.
var ErrDuplicateEmail = errors.New("email already in use")

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	FullName     string             `bson:"fullName"`
	Image        string             `bson:"image,omitempty"`
	PasswordHash string             `bson:"password,omitempty"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
	BannedAt     *time.Time         `bson:"bannedAt,omitempty"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		FullName:     d.FullName,
		Image:        d.Image,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		BannedAt:     d.BannedAt,
	}
}

// safeProjection excludes the password hash; it must be requested explicitly.
var safeProjection = bson.M{"password": 0}

type UserRepo struct {
	c *mongo.Collection
}

func NewUserRepo(db *mongo.Database) (*UserRepo, error) {
	c := db.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create email index: %w", err)
	}
	return &UserRepo{c: c}, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now()
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Email:        u.Email,
		FullName:     u.FullName,
		Image:        u.Image,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = doc.ID.Hex()
	u.CreatedAt = doc.CreatedAt
	u.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid}, safeProjection)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, safeProjection)
}

func (r *UserRepo) FindByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M, projection bson.M) (*domain.User, error) {
	opts := options.FindOne()
	if projection != nil {
		opts = opts.SetProjection(projection)
	}
	var doc userDoc
	err := r.c.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateProfile mutates only fullName and image for the user matching email.
// An empty image unsets the field. Returns nil when no such user exists.
func (r *UserRepo) UpdateProfile(ctx context.Context, email, fullName, image string) (*domain.User, error) {
	set := bson.M{"fullName": fullName, "updatedAt": time.Now()}
	update := bson.M{"$set": set}
	if image == "" {
		update["$unset"] = bson.M{"image": ""}
	} else {
		set["image"] = image
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(safeProjection)

	var doc userDoc
	err := r.c.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return doc.toDomain(), nil
}

// fuzzyFilter matches email or fullName case-insensitively. The input is a
// literal, never a pattern: regex metacharacters from the search box must not
// reach the server as operators.
func fuzzyFilter(q string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	return bson.M{"$or": bson.A{bson.M{"email": re}, bson.M{"fullName": re}}}
}

func (r *UserRepo) List(ctx context.Context, q string, offset, limit int64) ([]domain.User, int64, error) {
	filter := bson.M{}
	if q != "" {
		filter = fuzzyFilter(q)
	}

	total, err := r.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit).
		SetProjection(safeProjection)
	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}
	users := make([]domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].toDomain())
	}
	return users, total, nil
}

// Ban timestamps the account instead of deleting it; user records are never
// hard-deleted.
func (r *UserRepo) Ban(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{"bannedAt": time.Now(), "updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("ban user: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
