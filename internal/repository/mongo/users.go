package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
)

var userFields = map[string]value{
	model.FieldName:     asString,
	model.FieldEmail:    asString,
	model.FieldPassword: asString,
	model.FieldRole:     asString,
	model.FieldClients:  asStrings,
	model.FieldManager:  asString,
}

type UserRepository struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		coll:   db.Collection(usersCollection),
		logger: logger,
	}
}

func fixUser(u *model.User) *model.User {
	if u.Clients == nil {
		u.Clients = []string{}
	}
	return u
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	u.ID = model.NewID()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	fixUser(u)

	err := repository.Observe(ctx, driver, "insert", usersCollection, func(ctx context.Context) error {
		_, err := r.coll.InsertOne(ctx, u)
		return err
	})
	if err = translate(err, model.FieldEmail); err != nil {
		r.logger.Error("Failed to insert user", zap.Error(err))
		return err
	}

	r.logger.Info("User inserted successfully", zap.String("id", u.ID))
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := repository.Observe(ctx, driver, "find", usersCollection, func(ctx context.Context) error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(u)
	})
	if err != nil {
		return nil, translate(err, "")
	}
	return fixUser(u), nil
}

func (r *UserRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query[model.FieldRole] = filter.Role
	}

	users := make([]*model.User, 0)
	err := repository.Observe(ctx, driver, "find", usersCollection, func(ctx context.Context) error {
		cur, err := r.coll.Find(ctx, query, sortByCreation)
		if err != nil {
			return err
		}
		return cur.All(ctx, &users)
	})
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, err
	}
	for _, u := range users {
		fixUser(u)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch validation.Document) (*model.User, error) {
	u := &model.User{}
	err := repository.Observe(ctx, driver, "update", usersCollection, func(ctx context.Context) error {
		return r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, buildUpdate(userFields, patch, now()), returnAfter).Decode(u)
	})
	if err = translate(err, model.FieldEmail); err != nil {
		return nil, err
	}

	r.logger.Info("User updated successfully", zap.String("id", id), zap.Strings("fields", patch.Keys()))
	return fixUser(u), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return repository.Observe(ctx, driver, "delete", usersCollection, func(ctx context.Context) error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			r.logger.Error("Failed to delete user", zap.String("id", id), zap.Error(err))
			return err
		}
		r.logger.Info("User deleted", zap.String("id", id), zap.Int64("count", res.DeletedCount))
		return nil
	})
}

// AddClient 只在客户不存在时 $push，已存在则原样返回
func (r *UserRepository) AddClient(ctx context.Context, managerID, clientID string) (*model.User, error) {
	filter := bson.M{"_id": managerID, model.FieldClients: bson.M{"$ne": clientID}}
	update := bson.M{
		"$push": bson.M{model.FieldClients: clientID},
		"$set":  bson.M{"updatedAt": now()},
	}

	u := &model.User{}
	err := repository.Observe(ctx, driver, "update", usersCollection, func(ctx context.Context) error {
		return r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(u)
	})
	if err == nil {
		return fixUser(u), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to add client", zap.String("manager", managerID), zap.Error(err))
		return nil, err
	}
	// 未匹配：经理不存在，或者客户已在列表中
	return r.FindByID(ctx, managerID)
}
