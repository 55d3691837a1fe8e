package repository

import (
	"context"

	"movielens-etl/internal/aggregation"
	"movielens-etl/internal/db"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// JoinedRepository maneja ratings_userinfo_genres (ratings + usuario + géneros).
type JoinedRepository struct {
	ratings *mongo.Collection
	col     *mongo.Collection
}

func NewJoinedRepository(d *mongo.Database) *JoinedRepository {
	return &JoinedRepository{
		ratings: d.Collection(db.RatingsCollection),
		col:     d.Collection(db.JoinedCollection),
	}
}

func (r *JoinedRepository) EstimatedCount(ctx context.Context) (int64, error) {
	return r.col.EstimatedDocumentCount(ctx)
}

// Build corre el join sobre ratings; el $out reemplaza la colección destino.
func (r *JoinedRepository) Build(ctx context.Context) error {
	pipeline := aggregation.JoinPipeline(db.UsersCollection, db.MoviesCollection, r.col.Name())
	return runOut(ctx, r.ratings, pipeline)
}

// runOut ejecuta un pipeline terminado en $out y drena el cursor (vacío).
func runOut(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) error {
	cur, err := col.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
	}
	return cur.Err()
}
