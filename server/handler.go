package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soocke/photo-finish-go/domain/finish"
)

const pngContentType = "image/png"

// Controller is the recording surface the handlers drive.
type Controller interface {
	Start() error
	Stop() bool
	Status() finish.Status
	Photos() *finish.PhotoCollection
}

// Handler exposes the recorder over HTTP using go-chi.
type Handler struct {
	ctl      Controller
	exporter finish.Exporter
	prefix   string
	log      *slog.Logger
}

// NewHandler returns a Handler. exporter may be nil to disable exports.
func NewHandler(ctl Controller, exporter finish.Exporter, prefix string, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{ctl: ctl, exporter: exporter, prefix: prefix, log: log}
}

type statusResponse struct {
	Recording bool    `json:"recording"`
	Active    bool    `json:"active"`
	Session   string  `json:"session,omitempty"`
	Frames    int     `json:"frames"`
	Slices    int     `json:"slices"`
	ElapsedMs float64 `json:"elapsed_ms"`
	Photos    int     `json:"photos"`
}

type photoResponse struct {
	Index      int       `json:"index"`
	Name       string    `json:"name"`
	ID         string    `json:"id"`
	Session    string    `json:"session"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Frames     int       `json:"frames"`
	Direction  string    `json:"direction"`
	Bytes      int       `json:"bytes"`
	CapturedAt time.Time `json:"captured_at"`
}

type exportResponse struct {
	Exported int    `json:"exported"`
	Error    string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) status() statusResponse {
	st := h.ctl.Status()
	resp := statusResponse{
		Recording: st.Recording,
		Active:    st.Active,
		Frames:    st.Frames,
		Slices:    st.Slices,
		ElapsedMs: st.ElapsedMs,
		Photos:    h.ctl.Photos().Len(),
	}
	if st.Recording {
		resp.Session = st.Session.String()
	}
	return resp
}

// StartCapture handles POST /capture/start.
func (h *Handler) StartCapture(w http.ResponseWriter, r *http.Request) {
	err := h.ctl.Start()
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, h.status())
	case errors.Is(err, finish.ErrSessionActive):
		writeJSON(w, http.StatusConflict, h.status())
	case errors.Is(err, finish.ErrNoFrameSize):
		h.log.Debug("start before first frame", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		h.log.Error("start capture failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// StopCapture handles POST /capture/stop. The session ends after its next
// frame.
func (h *Handler) StopCapture(w http.ResponseWriter, r *http.Request) {
	if !h.ctl.Stop() {
		writeJSON(w, http.StatusConflict, h.status())
		return
	}
	writeJSON(w, http.StatusAccepted, h.status())
}

// GetStatus handles GET /capture/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

// ListPhotos handles GET /photos.
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	photos := h.ctl.Photos().All()
	out := make([]photoResponse, len(photos))
	for i, p := range photos {
		out[i] = photoResponse{
			Index:      i,
			Name:       finish.ExportName(h.prefix, i),
			ID:         p.ID.String(),
			Session:    p.SessionID.String(),
			Width:      p.Width,
			Height:     p.Height,
			Frames:     p.Frames,
			Direction:  p.Direction.String(),
			Bytes:      len(p.PNG),
			CapturedAt: p.CapturedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPhoto handles GET /photos/{index}.png.
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	p, ok := h.ctl.Photos().At(idx)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", pngContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+finish.ExportName(h.prefix, idx)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(p.PNG)))
	w.WriteHeader(http.StatusOK)
	w.Write(p.PNG)
}

// ExportPhotos handles POST /photos/export.
func (h *Handler) ExportPhotos(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}
	n, err := finish.ExportAll(r.Context(), h.exporter, h.ctl.Photos(), h.prefix)
	if err != nil {
		h.log.Error("export failed", slog.Int("exported", n), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, exportResponse{Exported: n, Error: err.Error()})
		return
	}
	h.log.Info("photos exported", slog.Int("count", n))
	writeJSON(w, http.StatusOK, exportResponse{Exported: n})
}

// ClearPhotos handles DELETE /photos. It always succeeds.
func (h *Handler) ClearPhotos(w http.ResponseWriter, r *http.Request) {
	h.ctl.Photos().Clear()
	h.log.Info("photos cleared")
	w.WriteHeader(http.StatusNoContent)
}
