package repository

import (
	"context"

	"movielens-etl/internal/db"
	"movielens-etl/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(d *mongo.Database) *UserRepository {
	return &UserRepository{col: d.Collection(db.UsersCollection)}
}

func (r *UserRepository) EstimatedCount(ctx context.Context) (int64, error) {
	return r.col.EstimatedDocumentCount(ctx)
}

func (r *UserRepository) InsertMany(ctx context.Context, users []models.UserDoc) error {
	docs := make([]any, len(users))
	for i := range users {
		docs[i] = users[i]
	}
	return insertBatches(ctx, r.col, docs)
}
