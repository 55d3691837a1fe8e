package models

// RatingDoc es una fila de u.data.
type RatingDoc struct {
	UserID    int   `json:"userId" bson:"user_id"`
	MovieID   int   `json:"movieId" bson:"movie_id"`
	Rating    int   `json:"rating" bson:"rating"`
	Timestamp int64 `json:"timestamp" bson:"timestamp"`
}
