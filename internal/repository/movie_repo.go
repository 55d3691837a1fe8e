package repository

import (
	"context"

	"movielens-etl/internal/db"
	"movielens-etl/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type MovieRepository struct {
	col *mongo.Collection
}

func NewMovieRepository(d *mongo.Database) *MovieRepository {
	return &MovieRepository{col: d.Collection(db.MoviesCollection)}
}

func (r *MovieRepository) EstimatedCount(ctx context.Context) (int64, error) {
	return r.col.EstimatedDocumentCount(ctx)
}

// InsertMany guarda las películas con los flags de género aplanados.
func (r *MovieRepository) InsertMany(ctx context.Context, movies []models.MovieDoc) error {
	docs := make([]any, len(movies))
	for i := range movies {
		docs[i] = movies[i].Document()
	}
	return insertBatches(ctx, r.col, docs)
}
