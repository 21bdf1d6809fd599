package web

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"net/http"
	"time"
)

const (
	streamBoundary    = "frame"
	streamJPEGQuality = 75
)

// handleStream serves the composed screen as MJPEG until the client leaves
// or the server shuts down.
func handleStream(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeAPIError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(time.Second / time.Duration(deps.StreamFPS))
	defer ticker.Stop()

	var buf bytes.Buffer
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			img := deps.Screen()
			if img == nil {
				continue
			}
			buf.Reset()
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: streamJPEGQuality}); err != nil {
				if deps.Logger != nil {
					deps.Logger.Errorf("web", "stream encode: %v", err)
				}
				continue
			}
			if err := writeStreamPart(w, buf.Bytes()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeStreamPart(w http.ResponseWriter, frame []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", streamBoundary, len(frame)); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	_, err := w.Write([]byte("\r\n"))
	return err
}
