package main

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/rook-computer/snapscreen/internal/camera"
	"github.com/rook-computer/snapscreen/internal/capture"
)

var errSimulatedCaptureFailure = errors.New("simulated capture failure")

type SimFaults struct {
	NoFrames    bool `json:"noFrames"`
	CaptureFail bool `json:"captureFail"`
}

// SimControl owns the simulated camera and wraps the capture writer so
// faults can be injected over HTTP.
type SimControl struct {
	source *camera.PatternSource
	writer *capture.Writer

	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}
}

func NewSimControl(source *camera.PatternSource, writer *capture.Writer) *SimControl {
	return &SimControl{source: source, writer: writer}
}

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()

	c.source.SetPaused(v.NoFrames)
	if v.NoFrames {
		c.source.Reset()
	}
}

// Reset clears all faults and deletes captures written by the simulator.
func (c *SimControl) Reset() error {
	c.SetFaults(SimFaults{})
	names, err := capture.List(c.writer.Dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(c.writer.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Save implements the camera screen's saver with fault injection.
func (c *SimControl) Save(frame image.Image) (string, error) {
	if c.Faults().CaptureFail {
		err := &capture.Error{Path: filepath.Join(c.writer.Dir, capture.FileName(c.writer.Now())), Err: errSimulatedCaptureFailure}
		if c.writer.Logger != nil {
			c.writer.Logger.Errorf("capture", "%v", err)
		}
		return "", err
	}
	return c.writer.Save(frame)
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := control.Reset(); err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Faults())
			return
		case http.MethodPost:
			var patch struct {
				NoFrames    *bool `json:"noFrames"`
				CaptureFail *bool `json:"captureFail"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.NoFrames != nil {
				current.NoFrames = *patch.NoFrames
			}
			if patch.CaptureFail != nil {
				current.CaptureFail = *patch.CaptureFail
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, current)
			return
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
