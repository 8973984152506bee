// Package mongo stores users, projects and progress entries in MongoDB.
// Documents use the string id as _id and the JSON field names as keys.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/validation"
)

const driver = "mongodb"

const (
	usersCollection    = "users"
	projectsCollection = "projects"
	progressCollection = "progress"
)

// New 在已连接的数据库上创建存储
func New(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *repository.Store {
	return &repository.Store{
		Users:    NewUserRepository(db, logger),
		Projects: NewProjectRepository(db, logger),
		Progress: NewProgressRepository(db, logger),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		Close: client.Disconnect,
	}
}

// EnsureIndexes 创建 email 唯一索引和进度的 project 索引
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: model.FieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	_, err = db.Collection(progressCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: model.FieldProject, Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create progress project index: %w", err)
	}

	logger.Info("MongoDB indexes are up to date")
	return nil
}

// value 把文档字段转换成 BSON 值，返回 nil 表示应当 $unset
type value func(doc validation.Document, key string) any

func asString(doc validation.Document, key string) any { return doc.String(key) }
func asFloat(doc validation.Document, key string) any  { return doc.Float(key) }
func asTime(doc validation.Document, key string) any   { return doc.Time(key) }
func asRaw(doc validation.Document, key string) any    { return doc[key] }

func asOptionalFloat(doc validation.Document, key string) any {
	if f := doc.FloatPtr(key); f != nil {
		return *f
	}
	return nil
}

func asOptionalTime(doc validation.Document, key string) any {
	if t := doc.TimePtr(key); t != nil {
		return *t
	}
	return nil
}

func asStrings(doc validation.Document, key string) any {
	s := doc.Strings(key)
	if s == nil {
		s = []string{}
	}
	return s
}

// buildUpdate 生成 $set / $unset 更新文档，updatedAt 总是刷新
func buildUpdate(fields map[string]value, patch validation.Document, updatedAt time.Time) bson.M {
	set := bson.M{"updatedAt": updatedAt}
	unset := bson.M{}

	for _, key := range patch.Keys() {
		conv, ok := fields[key]
		if !ok {
			continue
		}
		if v := conv(patch, key); v != nil {
			set[key] = v
		} else {
			unset[key] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

// normalize 把解码出来的 primitive 类型转换成普通 map/slice，保证 JSON 输出一致
func normalize(v any) any {
	switch val := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case primitive.M:
		return normalize(map[string]any(val))
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalize(item)
		}
		return m
	case primitive.A:
		return normalize([]any(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return v
	}
}

func translate(err error, uniqueField string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.ErrNotFound
	}
	if uniqueField != "" && mongo.IsDuplicateKeyError(err) {
		return &apperr.DuplicateKeyError{Field: uniqueField, Err: err}
	}
	return err
}

var sortByCreation = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

var returnAfter = options.FindOneAndUpdate().SetReturnDocument(options.After)

// now 截断到毫秒，和 BSON 日期精度一致
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
