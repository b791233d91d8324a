package web

import (
	"encoding/json"
	"net/http"
)

// Status is the snapshot served by /api/status.
type Status struct {
	Listening       bool  `json:"listening"`
	ListenPort      int   `json:"listen_port"`
	ActiveSessions  int64 `json:"active_sessions"`
	GlobalDirective bool  `json:"global_directive"`
}

// StatusProvider is implemented by the fault endpoint server. It
// decouples the web package from the server package.
type StatusProvider interface {
	Status() *Status
}

type Handler struct {
	provider StatusProvider
}

func NewHandler(provider StatusProvider) *Handler {
	return &Handler{provider: provider}
}

// HandleStatus handles GET /api/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.provider.Status())
}
