// Package handlers provides HTTP handlers for register sessions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/internal/modules/register"
	"github.com/aristath/qsim/internal/modules/simulation"
)

// Handler provides HTTP handlers for simulation endpoints
type Handler struct {
	service *simulation.Service
	log     zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(service *simulation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "simulation").Logger(),
	}
}

// RegisterRoutes mounts the simulation endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/registers", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleInfo)
			r.Delete("/", h.HandleDelete)
			r.Post("/gates", h.HandleApplyGate)
			r.Post("/measure", h.HandleMeasure)
			r.Get("/state", h.HandleState)
			r.Get("/probabilities", h.HandleProbabilities)
			r.Get("/measurements", h.HandleMeasurements)
			r.Post("/snapshots", h.HandleSnapshot)
			r.Get("/snapshots", h.HandleListSnapshots)
			r.Post("/restore", h.HandleRestore)
			r.Get("/shots", h.HandleShots)
		})
	})
}

// writeJSON encodes v as the response body.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps domain errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var notFound simulation.SessionNotFoundError
	var tooLarge simulation.RegisterTooLargeError
	var mismatch gate.DimensionMismatchError
	var nonUnitary gate.NonUnitaryError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &tooLarge),
		errors.As(err, &mismatch),
		errors.As(err, &nonUnitary),
		errors.Is(err, register.ErrEmptyRegister):
		status = http.StatusBadRequest
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// HandleCreate handles POST /api/registers
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bits []int `json:"bits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	for _, b := range req.Bits {
		if b != 0 && b != 1 {
			http.Error(w, "Bits must be 0 or 1", http.StatusBadRequest)
			return
		}
	}

	info, err := h.service.Create(req.Bits)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, info)
}

// HandleList handles GET /api/registers
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.List())
}

// HandleInfo handles GET /api/registers/{id}
func (h *Handler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Info(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

// HandleDelete handles DELETE /api/registers/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleApplyGate handles POST /api/registers/{id}/gates
func (h *Handler) HandleApplyGate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Gate      string  `json:"gate"`
		Param     float64 `json:"param"`
		Positions []int   `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.ApplyGate(id, req.Gate, req.Param, req.Positions); err != nil {
		// Unknown gate names come back as plain errors; treat them as client faults.
		var notFound simulation.SessionNotFoundError
		var drift register.NormalizationDriftError
		if !errors.As(err, &notFound) && !errors.As(err, &drift) {
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMeasure handles POST /api/registers/{id}/measure.
// An empty positions list measures the whole register.
func (h *Handler) HandleMeasure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Positions []int `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	var outcome []int
	var err error
	if len(req.Positions) == 0 {
		outcome, err = h.service.MeasureAll(id)
	} else {
		outcome, err = h.service.Measure(id, req.Positions)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"positions": req.Positions,
		"outcome":   outcome,
	})
}

// amplitudeJSON is the wire form of one complex amplitude.
type amplitudeJSON struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// HandleState handles GET /api/registers/{id}/state
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.State(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	amplitudes := make([]amplitudeJSON, len(v))
	for i, a := range v {
		amplitudes[i] = amplitudeJSON{Re: real(a), Im: imag(a)}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"qubits":     v.Qubits(),
		"amplitudes": amplitudes,
	})
}

// HandleProbabilities handles GET /api/registers/{id}/probabilities
func (h *Handler) HandleProbabilities(w http.ResponseWriter, r *http.Request) {
	probs, err := h.service.Probabilities(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"probabilities": probs})
}

// HandleMeasurements handles GET /api/registers/{id}/measurements
func (h *Handler) HandleMeasurements(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Measurements(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

// HandleSnapshot handles POST /api/registers/{id}/snapshots
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.service.Snapshot(chi.URLParam(r, "id"), req.Label)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]int64{"snapshot_id": id})
}

// HandleListSnapshots handles GET /api/registers/{id}/snapshots
func (h *Handler) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.service.Snapshots(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	type snapJSON struct {
		ID        int64  `json:"id"`
		Label     string `json:"label"`
		Qubits    int    `json:"qubits"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]snapJSON, len(snaps))
	for i, s := range snaps {
		out[i] = snapJSON{
			ID:        s.ID,
			Label:     s.Label,
			Qubits:    s.Qubits,
			CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

// HandleRestore handles POST /api/registers/{id}/restore
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SnapshotID int64 `json:"snapshot_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Restore(chi.URLParam(r, "id"), req.SnapshotID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
