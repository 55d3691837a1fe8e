package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"movielens-etl/internal/models"
	"movielens-etl/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// PipelineRunner ejecuta el ETL completo.
type PipelineRunner interface {
	Run(ctx context.Context, observe func(models.StepResult)) (*models.RunDoc, error)
}

// RunLister lee el historial de ejecuciones.
type RunLister interface {
	ListRecent(ctx context.Context, limit int64) ([]models.RunDoc, error)
	FindByID(ctx context.Context, id string) (*models.RunDoc, error)
}

type RunHandler struct {
	runner PipelineRunner
	runs   RunLister
}

func NewRunHandler(runner PipelineRunner, runs RunLister) *RunHandler {
	return &RunHandler{runner: runner, runs: runs}
}

// @Summary Historial de ejecuciones del ETL
// @Tags runs
// @Produce json
// @Param limit query int false "límite (default 20, máx 100)"
// @Success 200 {array} models.RunDoc
// @Router /runs [get]
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := int64(20)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}

	runs, err := h.runs.ListRecent(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []models.RunDoc{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// @Summary Detalle de una ejecución
// @Tags runs
// @Produce json
// @Param id path string true "id de la ejecución"
// @Success 200 {object} models.RunDoc
// @Router /runs/{id} [get]
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// upgrader global
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Ejecuta el ETL y transmite el avance (WebSocket)
// @Description Mensajes: start, step (uno por paso), done con el historial completo, o error.
// @Tags runs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ws/pipeline [get]
func (h *RunHandler) RunPipelineWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió con el error HTTP
		return
	}
	defer conn.Close()

	conn.WriteJSON(map[string]any{
		"type": "start",
		"msg":  "Conexión WS abierta, iniciando ETL…",
	})

	run, err := h.runner.Run(r.Context(), func(res models.StepResult) {
		conn.WriteJSON(map[string]any{
			"type": "step",
			"step": res,
		})
	})
	if err != nil {
		status := "error"
		if errors.Is(err, service.ErrRunInProgress) {
			status = "busy"
		}
		conn.WriteJSON(map[string]any{
			"type":  status,
			"error": err.Error(),
		})
		return
	}

	conn.WriteJSON(map[string]any{
		"type":        "done",
		"run":         run,
		"failed":      run.Failed(),
		"generatedAt": time.Now(),
	})
}
