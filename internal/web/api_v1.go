package web

import (
	"encoding/json"
	"errors"
	"image/png"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rook-computer/snapscreen/internal/buttons"
	"github.com/rook-computer/snapscreen/internal/capture"
	"github.com/rook-computer/snapscreen/internal/state"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type stateResponse struct {
	Phase          string  `json:"phase"`
	PreviewEnabled bool    `json:"previewEnabled"`
	RotationAngle  int     `json:"rotationAngle"`
	StoragePath    string  `json:"storagePath"`
	Platform       string  `json:"platform"`
	PreviewScale   float64 `json:"previewScale"`
	LastCapture    string  `json:"lastCapture,omitempty"`
	LastError      string  `json:"lastError,omitempty"`
	Captures       int     `json:"captures"`
	FreeBytes      *uint64 `json:"freeBytes,omitempty"`
	TotalBytes     *uint64 `json:"totalBytes,omitempty"`
}

type actionResponse struct {
	State stateResponse `json:"state"`
	Path  string        `json:"path,omitempty"`
}

type capturesResponse struct {
	Captures []string `json:"captures"`
}

func newStateResponse(snap state.State) stateResponse {
	return stateResponse{
		Phase:          snap.Phase.String(),
		PreviewEnabled: snap.PreviewEnabled,
		RotationAngle:  snap.RotationAngle,
		StoragePath:    snap.StoragePath,
		Platform:       snap.Platform,
		PreviewScale:   snap.PreviewScale,
		LastCapture:    snap.LastCapture,
		LastError:      snap.LastError,
		Captures:       snap.Captures,
	}
}

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) { handleState(w, r, deps) })
	for _, action := range []string{"preview", "capture", "rotate", "quit"} {
		ev, _ := buttons.ParseEvent(action)
		mux.HandleFunc("/"+action, func(w http.ResponseWriter, r *http.Request) { handleAction(w, r, deps, ev) })
	}
	mux.HandleFunc("/screen.png", func(w http.ResponseWriter, r *http.Request) { handleScreenPNG(w, r, deps) })
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) { handleStream(w, r, deps) })
	mux.HandleFunc("/captures", func(w http.ResponseWriter, r *http.Request) { handleCaptures(w, r, deps) })
	mux.HandleFunc("/captures/", func(w http.ResponseWriter, r *http.Request) { handleCaptures(w, r, deps) })
	mux.HandleFunc("/events", eventsHandler(deps))
	return mux
}

func handleState(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	snap := deps.Store.Snapshot()
	resp := newStateResponse(snap)
	if snap.StoragePath != "" {
		if usage, err := deps.Usage(r.Context(), snap.StoragePath); err == nil {
			resp.FreeBytes = &usage.Free
			resp.TotalBytes = &usage.Total
		} else if deps.Logger != nil {
			deps.Logger.Errorf("web", "storage usage for %s: %v", snap.StoragePath, err)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleAction(w http.ResponseWriter, r *http.Request, deps APIV1Deps, ev buttons.Event) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	snap, path, err := deps.Dispatch(r.Context(), ev)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotRunning):
			writeAPIError(w, http.StatusServiceUnavailable, "not_running", err.Error())
		case ev == buttons.Capture:
			writeAPIError(w, http.StatusInternalServerError, "capture_failed", err.Error())
		default:
			writeAPIError(w, http.StatusInternalServerError, "action_failed", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{State: newStateResponse(snap), Path: path})
}

func handleScreenPNG(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	img := deps.Screen()
	if img == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "no_frame", "screen not rendered yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	if err := png.Encode(w, img); err != nil && deps.Logger != nil {
		deps.Logger.Errorf("web", "encode screen.png: %v", err)
	}
}

func handleCaptures(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	dir := deps.Store.Snapshot().StoragePath
	if dir == "" {
		writeAPIError(w, http.StatusServiceUnavailable, "no_storage", "storage path not resolved yet")
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/captures"), "/")
	if name == "" {
		names, err := capture.List(dir)
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "list_failed", err.Error())
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, capturesResponse{Captures: names})
		return
	}

	if strings.ContainsAny(name, `/\`) || !capture.IsCaptureName(name) {
		writeAPIError(w, http.StatusBadRequest, "invalid_name", "invalid capture name")
		return
	}
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeAPIError(w, http.StatusNotFound, "capture_not_found", "capture not found")
			return
		}
		writeAPIError(w, http.StatusInternalServerError, "download_failed", err.Error())
		return
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "download_failed", err.Error())
		return
	}

	setDownloadHeaders(w, name, "image/png")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	cd := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	w.Header().Set("Content-Disposition", cd)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
