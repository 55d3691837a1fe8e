package repository

import (
	"context"

	"movielens-etl/internal/aggregation"
	"movielens-etl/internal/db"
	"movielens-etl/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatsRepository maneja las colecciones *_genre_rating_stats.
type StatsRepository struct {
	d      *mongo.Database
	joined *mongo.Collection
}

func NewStatsRepository(d *mongo.Database) *StatsRepository {
	return &StatsRepository{d: d, joined: d.Collection(db.JoinedCollection)}
}

func (r *StatsRepository) EstimatedCount(ctx context.Context, dim models.Dimension) (int64, error) {
	return r.d.Collection(dim.Collection).EstimatedDocumentCount(ctx)
}

// Build calcula las estadísticas de dim a partir del join.
func (r *StatsRepository) Build(ctx context.Context, dim models.Dimension) error {
	pipeline := aggregation.StatsPipeline(dim.Field, dim.Collection, models.GenreCount)
	return runOut(ctx, r.joined, pipeline)
}

// List devuelve todas las filas de la colección de dim, ordenadas por grupo y género.
func (r *StatsRepository) List(ctx context.Context, dim models.Dimension) ([]models.GenreStat, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 0}).
		SetSort(bson.D{{Key: dim.Field, Value: 1}, {Key: "genre_index", Value: 1}})

	cur, err := r.d.Collection(dim.Collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GenreStat
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}

		out = append(out, models.GenreStat{
			Group:      asString(raw[dim.Field]),
			GenreIndex: asInt(raw["genre_index"]),
			AvgRating:  asFloat64(raw["avg_rating"]),
			Count:      asInt(raw["count"]),
		})
	}
	return out, cur.Err()
}
