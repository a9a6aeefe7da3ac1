package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// jobView is the wire form of a reindex job.
type jobView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Classes     []string  `json:"classes,omitempty"`
	BatchSize   int       `json:"batch_size"`
	CurrentStep int       `json:"current_step"`
	TotalSteps  int       `json:"total_steps"`
	Progress    float64   `json:"progress"`
	IsComplete  bool      `json:"is_complete"`
	LastError   string    `json:"last_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newJobView(s domain.ReindexState) jobView {
	return jobView{
		ID:          s.JobID,
		Title:       domain.ReindexTitle(s.OnlyClasses),
		Status:      string(s.Status),
		Classes:     s.OnlyClasses,
		BatchSize:   s.BatchSize,
		CurrentStep: s.CurrentStep,
		TotalSteps:  s.TotalSteps,
		Progress:    s.Progress(),
		IsComplete:  s.IsComplete,
		LastError:   s.LastError,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
