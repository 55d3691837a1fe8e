package report

import (
	"fmt"
	"io"

	"movielens-etl/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "600px"
	chartHeight = "300px"
	// ~1.2 rad, etiquetas de género casi verticales
	labelRotate = 69
)

// Render escribe en w una página HTML con dos gráficos por grupo:
// rating promedio por género y cantidad de ratings por género.
func Render(w io.Writer, dim models.Dimension, rep models.DimensionReport) error {
	page := components.NewPage()
	page.PageTitle = dim.Title + " charts"
	page.SetLayout(components.PageFlexLayout)

	labels := models.GenreLabels[:]
	for _, g := range rep.Groups {
		avg, count := barSeries(g)
		page.AddCharts(
			newBar(fmt.Sprintf("%s: %s — Avg Rating", dim.Title, g.Group), "Avg Rating", labels, avg),
			newBar(fmt.Sprintf("%s: %s — Count", dim.Title, g.Group), "Count", labels, count),
		)
	}

	return page.Render(w)
}

// barSeries llena las 19 posiciones; los géneros sin datos quedan sin barra ("-").
func barSeries(g models.GroupStats) (avg, count []opts.BarData) {
	avg = make([]opts.BarData, models.GenreCount)
	count = make([]opts.BarData, models.GenreCount)
	for i := range avg {
		avg[i] = opts.BarData{Value: "-"}
		count[i] = opts.BarData{Value: "-"}
	}
	for _, c := range g.Genres {
		avg[c.GenreIndex] = opts.BarData{Value: c.AvgRating}
		count[c.GenreIndex] = opts.BarData{Value: c.Count}
	}
	return avg, count
}

func newBar(title, yName string, labels []string, data []opts.BarData) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Rotate: labelRotate, Interval: "0"}}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Min: 0}),
	)
	bar.SetXAxis(labels).AddSeries(yName, data)
	return bar
}
