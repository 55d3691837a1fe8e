package models

import (
	"errors"
	"fmt"
)

var ErrUnknownDimension = errors.New("dimensión desconocida")

// Dimension describe un eje demográfico de agrupación y dónde viven sus estadísticas.
type Dimension struct {
	Name       string // nombre público (age, gender, occupation)
	Field      string // campo en ratings_userinfo_genres
	Collection string // colección destino de las estadísticas
	Title      string // prefijo de los títulos de los gráficos
	ChartFile  string
}

var (
	AgeDimension = Dimension{
		Name: "age", Field: "age", Collection: "age_genre_rating_stats",
		Title: "Age group", ChartFile: "age_group_charts.html",
	}
	GenderDimension = Dimension{
		Name: "gender", Field: "gender", Collection: "gender_genre_rating_stats",
		Title: "Gender", ChartFile: "gender_charts.html",
	}
	OccupationDimension = Dimension{
		Name: "occupation", Field: "occupation", Collection: "occupation_genre_rating_stats",
		Title: "Occupation", ChartFile: "occupation_charts.html",
	}
)

// Dimensions en el orden en que se calculan y grafican.
var Dimensions = []Dimension{AgeDimension, GenderDimension, OccupationDimension}

// DimensionByName busca una dimensión por su nombre público.
func DimensionByName(name string) (Dimension, bool) {
	for _, d := range Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// ParseDimension es DimensionByName con error, para la CLI y los handlers.
func ParseDimension(name string) (Dimension, error) {
	d, ok := DimensionByName(name)
	if !ok {
		return Dimension{}, fmt.Errorf("%w: %q (age, gender u occupation)", ErrUnknownDimension, name)
	}
	return d, nil
}

// GenreStat es un documento de una colección *_genre_rating_stats.
// Group guarda el valor del campo de agrupación como string (la edad también).
type GenreStat struct {
	Group      string  `json:"group"`
	GenreIndex int     `json:"genreIndex"`
	AvgRating  float64 `json:"avgRating"`
	Count      int     `json:"count"`
}

// GenreCell es una barra de un gráfico: un género dentro de un grupo.
type GenreCell struct {
	GenreIndex int     `json:"genreIndex"`
	Genre      string  `json:"genre"`
	AvgRating  float64 `json:"avgRating"`
	Count      int     `json:"count"`
}

// GroupStats agrupa las celdas de un valor del eje (p.e. "20-29" o "M").
type GroupStats struct {
	Group  string      `json:"group"`
	Genres []GenreCell `json:"genres"`
}

// DimensionReport es lo que se grafica y lo que devuelve la API.
type DimensionReport struct {
	Dimension string       `json:"dimension"`
	Groups    []GroupStats `json:"groups"`
}
