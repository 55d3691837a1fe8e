package models

import "time"

// Estados posibles de un paso del ETL
const (
	StepDone    = "done"
	StepSkipped = "skipped"
	StepFailed  = "failed"
)

// StepResult resume la ejecución de un paso.
type StepResult struct {
	Name       string        `json:"name" bson:"name"`
	Status     string        `json:"status" bson:"status"` // done|skipped|failed
	Message    string        `json:"message,omitempty" bson:"message,omitempty"`
	Duration   time.Duration `json:"duration" bson:"duration"`
	FinishedAt time.Time     `json:"finishedAt" bson:"finishedAt"`
}

// RunDoc es el documento de la colección etl_runs.
type RunDoc struct {
	ID         string       `json:"id" bson:"_id"`
	StartedAt  time.Time    `json:"startedAt" bson:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt" bson:"finishedAt"`
	Steps      []StepResult `json:"steps" bson:"steps"`
}

// Failed indica si algún paso falló.
func (r *RunDoc) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return true
		}
	}
	return false
}
