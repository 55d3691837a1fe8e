package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// GenreCount es la cantidad de flags de género de u.item.
const GenreCount = 19

// GenreLabels en el orden de las columnas de u.item.
var GenreLabels = [GenreCount]string{
	"unknown", "Action", "Adventure", "Animation", "Children's", "Comedy",
	"Crime", "Documentary", "Drama", "Fantasy", "Film-Noir", "Horror",
	"Musical", "Mystery", "Romance", "Sci-Fi", "Thriller", "War", "Western",
}

// GenreField devuelve el nombre del campo plano del flag i ("genre_3").
func GenreField(i int) string {
	return fmt.Sprintf("genre_%d", i)
}

// MovieDoc es una fila de u.item. Los flags de género se guardan como
// campos planos genre_0..genre_18, por eso el documento se arma con Document().
type MovieDoc struct {
	MovieID          int             `json:"movieId"`
	Title            string          `json:"title"`
	ReleaseDate      string          `json:"releaseDate,omitempty"`
	VideoReleaseDate string          `json:"videoReleaseDate,omitempty"`
	IMDbURL          string          `json:"imdbUrl,omitempty"`
	Genres           [GenreCount]int `json:"genres"`
}

// Document arma el documento que se inserta en la colección movies.
func (m *MovieDoc) Document() bson.D {
	d := bson.D{
		{Key: "movie_id", Value: m.MovieID},
		{Key: "title", Value: m.Title},
	}
	if m.ReleaseDate != "" {
		d = append(d, bson.E{Key: "release_date", Value: m.ReleaseDate})
	}
	if m.VideoReleaseDate != "" {
		d = append(d, bson.E{Key: "video_release_date", Value: m.VideoReleaseDate})
	}
	if m.IMDbURL != "" {
		d = append(d, bson.E{Key: "IMDb_URL", Value: m.IMDbURL})
	}
	for i, flag := range m.Genres {
		d = append(d, bson.E{Key: GenreField(i), Value: flag})
	}
	return d
}
