// Package report agrupa las estadísticas por valor del eje y las dibuja como
// pares de gráficos de barras (rating promedio y cantidad por género).
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"movielens-etl/internal/models"
)

// AgeGroup convierte una edad en su década: 23 -> "20-29", 7 -> "0-9".
func AgeGroup(age int) string {
	if age < 10 {
		return "0-9"
	}
	lower := (age / 10) * 10
	return fmt.Sprintf("%d-%d", lower, lower+9)
}

type cellAcc struct {
	weighted float64
	count    int
}

// Build arma el reporte de una dimensión. Para edad, las filas de una misma
// década y género se fusionan: se suman las cantidades y el promedio se pondera
// por cantidad.
func Build(dim models.Dimension, stats []models.GenreStat) models.DimensionReport {
	acc := make(map[string]map[int]*cellAcc)

	for _, st := range stats {
		group := st.Group
		if dim.Name == models.AgeDimension.Name {
			if age, err := strconv.Atoi(st.Group); err == nil {
				group = AgeGroup(age)
			}
		}
		if st.GenreIndex < 0 || st.GenreIndex >= models.GenreCount {
			continue
		}

		cells, ok := acc[group]
		if !ok {
			cells = make(map[int]*cellAcc)
			acc[group] = cells
		}
		c, ok := cells[st.GenreIndex]
		if !ok {
			c = &cellAcc{}
			cells[st.GenreIndex] = c
		}
		c.weighted += st.AvgRating * float64(st.Count)
		c.count += st.Count
	}

	groups := make([]models.GroupStats, 0, len(acc))
	for group, cells := range acc {
		gs := models.GroupStats{Group: group}
		for idx, c := range cells {
			avg := 0.0
			if c.count > 0 {
				avg = round3(c.weighted / float64(c.count))
			}
			gs.Genres = append(gs.Genres, models.GenreCell{
				GenreIndex: idx,
				Genre:      models.GenreLabels[idx],
				AvgRating:  avg,
				Count:      c.count,
			})
		}
		sort.Slice(gs.Genres, func(i, j int) bool { return gs.Genres[i].GenreIndex < gs.Genres[j].GenreIndex })
		groups = append(groups, gs)
	}

	if dim.Name == models.AgeDimension.Name {
		sort.Slice(groups, func(i, j int) bool {
			return ageLowerBound(groups[i].Group) < ageLowerBound(groups[j].Group)
		})
	} else {
		sort.Slice(groups, func(i, j int) bool { return groups[i].Group < groups[j].Group })
	}

	return models.DimensionReport{Dimension: dim.Name, Groups: groups}
}

// ageLowerBound lee el "20" de "20-29"; lo que no se pueda leer va al final.
func ageLowerBound(group string) int {
	lower, _, _ := strings.Cut(group, "-")
	n, err := strconv.Atoi(lower)
	if err != nil {
		return math.MaxInt
	}
	return n
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
