// Package aggregation arma los pipelines de MongoDB del ETL: el join
// ratings+users+movies y las estadísticas por (eje demográfico, género).
package aggregation

import (
	"movielens-etl/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// JoinPipeline une cada rating con su usuario y su película y escribe el
// resultado en out. Se ejecuta sobre la colección de ratings.
func JoinPipeline(usersColl, moviesColl, out string) mongo.Pipeline {
	project := bson.D{
		{Key: "_id", Value: 0},
		{Key: "user_id", Value: 1},
		{Key: "movie_id", Value: 1},
		{Key: "rating", Value: 1},
		{Key: "age", Value: "$user_info.age"},
		{Key: "gender", Value: "$user_info.gender"},
		{Key: "occupation", Value: "$user_info.occupation"},
	}
	for i := 0; i < models.GenreCount; i++ {
		f := models.GenreField(i)
		project = append(project, bson.E{Key: f, Value: "$movie_info." + f})
	}

	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersColl},
			{Key: "localField", Value: "user_id"},
			{Key: "foreignField", Value: "user_id"},
			{Key: "as", Value: "user_info"},
		}}},
		{{Key: "$unwind", Value: "$user_info"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: moviesColl},
			{Key: "localField", Value: "movie_id"},
			{Key: "foreignField", Value: "movie_id"},
			{Key: "as", Value: "movie_info"},
		}}},
		{{Key: "$unwind", Value: "$movie_info"}},
		{{Key: "$project", Value: project}},
		{{Key: "$out", Value: out}},
	}
}

// StatsPipeline calcula rating promedio y cantidad por (field, genre_index)
// sobre la colección del join y escribe el resultado en out.
//
// Cada documento se expande en un elemento por flag de género; solo quedan
// los flags en 1.
func StatsPipeline(field, out string, genreCount int) mongo.Pipeline {
	flags := bson.A{}
	for i := 0; i < genreCount; i++ {
		flags = append(flags, bson.D{
			{Key: "index", Value: i},
			{Key: "flag", Value: "$" + models.GenreField(i)},
		})
	}

	return mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: field, Value: 1},
			{Key: "rating", Value: 1},
			{Key: "genre_flags", Value: flags},
		}}},
		{{Key: "$unwind", Value: "$genre_flags"}},
		{{Key: "$match", Value: bson.D{{Key: "genre_flags.flag", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: field, Value: "$" + field},
				{Key: "genre_index", Value: "$genre_flags.index"},
			}},
			{Key: "avg_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: field, Value: "$_id." + field},
			{Key: "genre_index", Value: "$_id.genre_index"},
			{Key: "avg_rating", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_rating", 3}}}},
			{Key: "count", Value: 1},
		}}},
		{{Key: "$out", Value: out}},
	}
}
