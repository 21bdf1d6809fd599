package web

import (
	"net/http"
	"time"

	"github.com/rook-computer/snapscreen/internal/state"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Phase     string    `json:"phase"`
	Timestamp time.Time `json:"timestamp"`
}

// RegisterAPIV1 mounts the remote API under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, deps APIV1Deps) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(deps)))
}

// RegisterHealth adds /health. It reports "stopping" once the UI loop is
// shutting down so a supervisor can tell a hung app from an exiting one.
func RegisterHealth(mux *http.ServeMux, store *state.Store) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
			return
		}
		resp := healthResponse{Status: "healthy", Timestamp: time.Now().UTC()}
		if store != nil {
			phase := store.Snapshot().Phase
			resp.Phase = phase.String()
			if phase == state.STOPPING {
				resp.Status = "stopping"
			}
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// RegisterUI serves the embedded remote page, or staticDir when set.
func RegisterUI(mux *http.ServeMux, staticDir string) {
	mux.Handle("/", StaticUIHandler(staticDir))
}

// NewDefaultMux is the mux shared by the device binary and the simulator.
func NewDefaultMux(staticDir string, deps APIV1Deps) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, deps)
	RegisterHealth(mux, deps.Store)
	RegisterUI(mux, staticDir)
	return mux
}
