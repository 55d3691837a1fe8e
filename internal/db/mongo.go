package db

import (
	"context"
	"fmt"
	"time"

	"movielens-etl/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Colecciones de la base movielens_100k.
// Las de estadísticas están en models.Dimensions.
const (
	UsersCollection   = "users"
	MoviesCollection  = "movies"
	RatingsCollection = "ratings"
	JoinedCollection  = "ratings_userinfo_genres"
	RunsCollection    = "etl_runs"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

func InitMongo(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("conectando a mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping a mongo falló: %w", err)
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	logger.Named("mongo").Info("conectado", zap.String("uri", cfg.MongoURI), zap.String("db", cfg.MongoDB))
	return nil
}

func DB() *mongo.Database {
	return mongoDB
}

// Close desconecta el cliente global, si lo hay.
func Close(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	err := mongoClient.Disconnect(ctx)
	mongoClient, mongoDB = nil, nil
	return err
}
