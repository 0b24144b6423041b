package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/go-user-orders-api/internal/domain/entity"
	"github.com/oksasatya/go-user-orders-api/internal/domain/repository"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

// EnsureIndexes creates the unique indexes that enforce userId, username and email uniqueness.
// Concurrent creates with the same key rely on these, not on application locking.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByUserID(ctx context.Context, userID int64) (*entity.User, error) {
	u := &entity.User{}
	opts := options.FindOne().SetProjection(withoutCredential())
	if err := r.coll.FindOne(ctx, activeOnly(byUserID(userID)), opts).Decode(u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	opts := options.Find().SetProjection(withoutCredential())
	cur, err := r.coll.Find(ctx, activeOnly(bson.D{}), opts)
	if err != nil {
		return nil, err
	}
	users := make([]entity.User, 0)
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update overwrites the scalar fields and sub-documents present in the patch and
// appends hobbies and orders. It returns the user as stored after the update.
func (r *UserRepository) Update(ctx context.Context, userID int64, patch entity.UserPatch) (*entity.User, error) {
	update := updateDocument(patch)
	if len(update) == 0 {
		return r.FindByUserID(ctx, userID)
	}

	u := &entity.User{}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutCredential())
	err := r.coll.FindOneAndUpdate(ctx, activeOnly(byUserID(userID)), update, opts).Decode(u)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, repository.ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, repository.ErrDuplicateKey
		}
		return nil, err
	}
	return u, nil
}

func updateDocument(p entity.UserPatch) bson.D {
	set := bson.D{}
	if p.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *p.Username})
	}
	if p.FullName != nil {
		set = append(set, bson.E{Key: "fullName", Value: *p.FullName})
	}
	if p.Age != nil {
		set = append(set, bson.E{Key: "age", Value: *p.Age})
	}
	if p.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *p.Email})
	}
	if p.IsActive != nil {
		set = append(set, bson.E{Key: "isActive", Value: *p.IsActive})
	}
	if p.Address != nil {
		set = append(set, bson.E{Key: "address", Value: *p.Address})
	}

	push := bson.D{}
	if len(p.Hobbies) > 0 {
		push = append(push, bson.E{Key: "hobbies", Value: bson.D{{Key: "$each", Value: p.Hobbies}}})
	}
	if len(p.Orders) > 0 {
		push = append(push, bson.E{Key: "orders", Value: bson.D{{Key: "$each", Value: p.Orders}}})
	}

	update := bson.D{}
	if len(set) > 0 {
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(push) > 0 {
		update = append(update, bson.E{Key: "$push", Value: push})
	}
	return update
}

func (r *UserRepository) Delete(ctx context.Context, userID int64) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, activeOnly(byUserID(userID)))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *UserRepository) OrdersByUserID(ctx context.Context, userID int64) ([]entity.Order, error) {
	var doc struct {
		Orders []entity.Order `bson:"orders"`
	}
	opts := options.FindOne().SetProjection(ordersOnly())
	if err := r.coll.FindOne(ctx, activeOnly(byUserID(userID)), opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if doc.Orders == nil {
		return []entity.Order{}, nil
	}
	return doc.Orders, nil
}

// TotalOrderPrice sums orders.price for the user. A user without orders totals 0.
func (r *UserRepository) TotalOrderPrice(ctx context.Context, userID int64) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: activeOnly(byUserID(userID))}},
		{{Key: "$unwind", Value: "$orders"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "totalOrdersPrice", Value: bson.D{{Key: "$sum", Value: "$orders.price"}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "_id", Value: 0}, {Key: "totalOrdersPrice", Value: 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer func() { _ = cur.Close(ctx) }()

	if !cur.Next(ctx) {
		return 0, cur.Err()
	}
	var row struct {
		Total float64 `bson:"totalOrdersPrice"`
	}
	if err := cur.Decode(&row); err != nil {
		return 0, err
	}
	return row.Total, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
