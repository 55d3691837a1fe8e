package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"movielens-etl/internal/models"

	"github.com/go-chi/chi/v5"
)

// Reporter arma y grafica los reportes por dimensión.
type Reporter interface {
	Report(ctx context.Context, dim models.Dimension, refresh bool) (*models.DimensionReport, error)
	Render(ctx context.Context, dim models.Dimension, w io.Writer) (bool, error)
}

// StatsLister lee las filas crudas de una colección de estadísticas.
type StatsLister interface {
	List(ctx context.Context, dim models.Dimension) ([]models.GenreStat, error)
}

type StatsHandler struct {
	reports Reporter
	stats   StatsLister
}

func NewStatsHandler(reports Reporter, stats StatsLister) *StatsHandler {
	return &StatsHandler{reports: reports, stats: stats}
}

type dimensionInfo struct {
	Name       string `json:"name"`
	Field      string `json:"field"`
	Collection string `json:"collection"`
}

// @Summary Dimensiones disponibles
// @Tags stats
// @Produce json
// @Success 200 {array} dimensionInfo
// @Router /dimensions [get]
func (h *StatsHandler) ListDimensions(w http.ResponseWriter, r *http.Request) {
	out := make([]dimensionInfo, 0, len(models.Dimensions))
	for _, d := range models.Dimensions {
		out = append(out, dimensionInfo{Name: d.Name, Field: d.Field, Collection: d.Collection})
	}
	writeJSON(w, http.StatusOK, out)
}

// @Summary Estadísticas agrupadas por valor del eje y género
// @Tags stats
// @Produce json
// @Param dimension path string true "age|gender|occupation"
// @Param refresh query bool false "si true, ignora cache Redis"
// @Success 200 {object} models.DimensionReport
// @Failure 404 {string} string "dimensión desconocida"
// @Router /stats/{dimension} [get]
func (h *StatsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	dim, ok := dimensionParam(w, r)
	if !ok {
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"

	rep, err := h.reports.Report(r.Context(), dim, refresh)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// @Summary Filas crudas de la colección de estadísticas
// @Tags stats
// @Produce json
// @Param dimension path string true "age|gender|occupation"
// @Success 200 {array} models.GenreStat
// @Router /stats/{dimension}/raw [get]
func (h *StatsHandler) GetRaw(w http.ResponseWriter, r *http.Request) {
	dim, ok := dimensionParam(w, r)
	if !ok {
		return
	}

	rows, err := h.stats.List(r.Context(), dim)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []models.GenreStat{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// @Summary Gráficos HTML de una dimensión
// @Tags stats
// @Produce html
// @Param dimension path string true "age|gender|occupation"
// @Success 200 {string} string "página HTML"
// @Failure 404 {string} string "sin estadísticas"
// @Router /charts/{dimension} [get]
func (h *StatsHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	dim, ok := dimensionParam(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	found, err := h.reports.Render(r.Context(), dim, &buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "no hay estadísticas para "+dim.Name, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func dimensionParam(w http.ResponseWriter, r *http.Request) (models.Dimension, bool) {
	dim, err := models.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return dim, false
	}
	return dim, true
}

// Utilidad pequeña para respuestas JSON.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
