package repository

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo"
)

// insertBatchSize limita cada InsertMany; u.data tiene 100k filas.
const insertBatchSize = 10000

func insertBatches(ctx context.Context, col *mongo.Collection, docs []any) error {
	for i := 0; i < len(docs); i += insertBatchSize {
		j := i + insertBatchSize
		if j > len(docs) {
			j = len(docs)
		}
		if _, err := col.InsertMany(ctx, docs[i:j]); err != nil {
			return err
		}
	}
	return nil
}

// helpers de casteo seguro
func asInt(v any) int {
	switch x := v.(type) {
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}

// asString normaliza el valor de agrupación (la edad viene como número).
func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int32:
		return strconv.Itoa(int(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
