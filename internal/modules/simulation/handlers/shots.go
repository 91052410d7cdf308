package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	defaultShotCount = 1024
	maxShotCount     = 1 << 20
)

// shotMessage is one streamed measurement outcome.
type shotMessage struct {
	Shot    int   `json:"shot"`
	Outcome []int `json:"outcome"`
}

// HandleShots handles GET /api/registers/{id}/shots, a WebSocket stream of
// repeated full measurements sampled from the session's current state. The
// live state is never collapsed; each shot draws fresh from the same
// distribution. The count query parameter bounds the stream.
func (h *Handler) HandleShots(w http.ResponseWriter, r *http.Request) {
	count := defaultShotCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxShotCount {
			http.Error(w, "count must be between 1 and 1048576", http.StatusBadRequest)
			return
		}
		count = n
	}

	id := chi.URLParam(r, "id")
	if _, err := h.service.Info(id); err != nil {
		h.writeError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	shot := 0
	err = h.service.Shots(id, count, func(outcome []int) error {
		shot++
		return wsjson.Write(ctx, conn, shotMessage{Shot: shot, Outcome: outcome})
	})
	if err != nil {
		h.log.Debug().Err(err).Str("session", id).Msg("Shot stream ended early")
		conn.Close(websocket.StatusInternalError, "shot stream failed")
		return
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
