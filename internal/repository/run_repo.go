package repository

import (
	"context"
	"time"

	"movielens-etl/internal/db"
	"movielens-etl/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RunRepository guarda el historial de ejecuciones del ETL.
type RunRepository struct {
	col *mongo.Collection
}

func NewRunRepository(d *mongo.Database) *RunRepository {
	return &RunRepository{col: d.Collection(db.RunsCollection)}
}

func (r *RunRepository) Insert(ctx context.Context, run *models.RunDoc) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, run)
	return err
}

func (r *RunRepository) FindByID(ctx context.Context, id string) (*models.RunDoc, error) {
	var run models.RunDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRecent devuelve las últimas limit ejecuciones, la más nueva primero.
func (r *RunRepository) ListRecent(ctx context.Context, limit int64) ([]models.RunDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "startedAt", Value: -1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RunDoc
	for cur.Next(ctx) {
		var run models.RunDoc
		if err := cur.Decode(&run); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, cur.Err()
}
