package repository

import (
	"context"

	"movielens-etl/internal/db"
	"movielens-etl/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository(d *mongo.Database) *RatingRepository {
	return &RatingRepository{col: d.Collection(db.RatingsCollection)}
}

func (r *RatingRepository) EstimatedCount(ctx context.Context) (int64, error) {
	return r.col.EstimatedDocumentCount(ctx)
}

func (r *RatingRepository) InsertMany(ctx context.Context, ratings []models.RatingDoc) error {
	docs := make([]any, len(ratings))
	for i := range ratings {
		docs[i] = ratings[i]
	}
	return insertBatches(ctx, r.col, docs)
}
