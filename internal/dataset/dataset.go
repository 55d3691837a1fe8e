// Package dataset lee los archivos planos de MovieLens 100K (u.user, u.item, u.data).
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"movielens-etl/internal/models"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
)

// Nombres de archivo dentro del directorio ml-100k.
const (
	UsersFile   = "u.user"
	MoviesFile  = "u.item"
	RatingsFile = "u.data"
)

// columnas fijas de u.item antes de los flags de género
const movieInfoColumns = 5

// Dataset agrupa las tres tablas crudas.
type Dataset struct {
	Users   []models.UserDoc
	Movies  []models.MovieDoc
	Ratings []models.RatingDoc
}

// Load lee los tres archivos de dir en paralelo.
func Load(ctx context.Context, dir string) (*Dataset, error) {
	var ds Dataset
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := loadFile(filepath.Join(dir, UsersFile), func(r io.Reader) ([]models.UserDoc, error) {
			return LoadUsers(ctx, r)
		})
		ds.Users = users
		return err
	})
	g.Go(func() error {
		movies, err := loadFile(filepath.Join(dir, MoviesFile), func(r io.Reader) ([]models.MovieDoc, error) {
			return LoadMovies(ctx, r)
		})
		ds.Movies = movies
		return err
	})
	g.Go(func() error {
		ratings, err := loadFile(filepath.Join(dir, RatingsFile), func(r io.Reader) ([]models.RatingDoc, error) {
			return LoadRatings(ctx, r)
		})
		ds.Ratings = ratings
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ds, nil
}

func loadFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abriendo %s: %w", path, err)
	}
	defer f.Close()

	out, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// LoadUsers parsea u.user: user_id|age|gender|occupation|zip_code.
func LoadUsers(ctx context.Context, r io.Reader) ([]models.UserDoc, error) {
	var out []models.UserDoc
	err := readRows(ctx, r, '|', 5, func(rec []string) error {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("user_id: %w", err)
		}
		age, err := strconv.Atoi(rec[1])
		if err != nil {
			return fmt.Errorf("age: %w", err)
		}
		out = append(out, models.UserDoc{
			UserID:     id,
			Age:        age,
			Gender:     rec[2],
			Occupation: rec[3],
			ZipCode:    rec[4],
		})
		return nil
	})
	return out, err
}

// LoadMovies parsea u.item (latin-1): 5 columnas de info + 19 flags de género.
// Columnas extra al final se ignoran.
func LoadMovies(ctx context.Context, r io.Reader) ([]models.MovieDoc, error) {
	var out []models.MovieDoc
	dec := charmap.ISO8859_1.NewDecoder().Reader(r)
	err := readRows(ctx, dec, '|', movieInfoColumns+models.GenreCount, func(rec []string) error {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("movie_id: %w", err)
		}
		m := models.MovieDoc{
			MovieID:          id,
			Title:            rec[1],
			ReleaseDate:      rec[2],
			VideoReleaseDate: rec[3],
			IMDbURL:          rec[4],
		}
		for i := 0; i < models.GenreCount; i++ {
			flag, err := strconv.Atoi(rec[movieInfoColumns+i])
			if err != nil {
				return fmt.Errorf("%s: %w", models.GenreField(i), err)
			}
			m.Genres[i] = flag
		}
		out = append(out, m)
		return nil
	})
	return out, err
}

// LoadRatings parsea u.data: user_id movie_id rating timestamp, separados por tab.
func LoadRatings(ctx context.Context, r io.Reader) ([]models.RatingDoc, error) {
	var out []models.RatingDoc
	err := readRows(ctx, r, '\t', 4, func(rec []string) error {
		var vals [3]int
		for i := range vals {
			n, err := strconv.Atoi(rec[i])
			if err != nil {
				return fmt.Errorf("columna %d: %w", i+1, err)
			}
			vals[i] = n
		}
		ts, err := strconv.ParseInt(rec[3], 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		out = append(out, models.RatingDoc{
			UserID:    vals[0],
			MovieID:   vals[1],
			Rating:    vals[2],
			Timestamp: ts,
		})
		return nil
	})
	return out, err
}

// readRows recorre r con el separador dado y exige al menos minCols columnas.
// Las líneas vacías se saltan (csv.Reader ya lo hace).
func readRows(ctx context.Context, r io.Reader, sep rune, minCols int, fn func([]string) error) error {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line, _ := reader.FieldPos(0)
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if len(rec) < minCols {
			return fmt.Errorf("línea %d: %d columnas, se esperaban %d", line, len(rec), minCols)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("línea %d: %w", line, err)
		}
	}
}
