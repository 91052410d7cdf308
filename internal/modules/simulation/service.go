// Package simulation manages live register sessions: creation, gate
// application, measurement, persistence of outcomes and snapshots, and
// cleanup of abandoned sessions.
package simulation

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/qsim/internal/modules/gate"
	"github.com/aristath/qsim/internal/modules/measure"
	"github.com/aristath/qsim/internal/modules/register"
	"github.com/aristath/qsim/internal/modules/state"
)

// SessionNotFoundError reports an unknown or already-deleted session id.
type SessionNotFoundError struct {
	ID string
}

func (e SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found", e.ID)
}

// RegisterTooLargeError reports a session request beyond the configured
// qubit limit.
type RegisterTooLargeError struct {
	Requested int
	Max       int
}

func (e RegisterTooLargeError) Error() string {
	return fmt.Sprintf("register of %d qubit(s) exceeds limit of %d", e.Requested, e.Max)
}

// session pairs a live register with its bookkeeping. Register operations
// run under the session mutex; the register itself is single-writer.
type session struct {
	mu        sync.Mutex
	id        string
	reg       *register.Register
	shots     *measure.Sampler
	createdAt time.Time
	lastUsed  time.Time
}

// SessionInfo is the exported view of a session.
type SessionInfo struct {
	ID        string    `json:"id"`
	Qubits    int       `json:"qubits"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

// Service owns all live sessions. Safe for concurrent use.
type Service struct {
	mu        sync.RWMutex
	sessions  map[string]*session
	repo      *Repository
	maxQubits int
	seed      int64
	seq       int64
	log       zerolog.Logger
}

// NewService creates the session service. A zero seed means samplers are
// seeded from the clock; any other value makes every run reproducible.
func NewService(repo *Repository, maxQubits int, seed int64, log zerolog.Logger) *Service {
	return &Service{
		sessions:  make(map[string]*session),
		repo:      repo,
		maxQubits: maxQubits,
		seed:      seed,
		log:       log.With().Str("service", "simulation").Logger(),
	}
}

// nextSeed derives a fresh sampler seed. Sequential offsets keep sessions
// from sharing outcome streams even under a fixed base seed.
func (s *Service) nextSeed() int64 {
	s.seq++
	if s.seed == 0 {
		return time.Now().UnixNano() + s.seq
	}
	return s.seed + s.seq
}

// Create starts a session with the given initial classical bits, one per
// qubit position.
func (s *Service) Create(bits []int) (*SessionInfo, error) {
	if len(bits) > s.maxQubits {
		return nil, RegisterTooLargeError{Requested: len(bits), Max: s.maxQubits}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sampler := measure.NewSampler(s.nextSeed(), s.log)
	reg, err := register.FromBits(bits, sampler, s.log)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &session{
		id:        uuid.New().String(),
		reg:       reg,
		shots:     measure.NewSampler(s.nextSeed(), s.log),
		createdAt: now,
		lastUsed:  now,
	}
	s.sessions[sess.id] = sess

	s.log.Info().Str("session", sess.id).Int("qubits", reg.Size()).Msg("Session created")
	return sess.info(), nil
}

func (sess *session) info() *SessionInfo {
	return &SessionInfo{
		ID:        sess.id,
		Qubits:    sess.reg.Size(),
		CreatedAt: sess.createdAt,
		LastUsed:  sess.lastUsed,
	}
}

func (s *Service) get(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, SessionNotFoundError{ID: id}
	}
	return sess, nil
}

// List returns info for every live session.
func (s *Service) List() []SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess.mu.Lock()
		infos = append(infos, *sess.info())
		sess.mu.Unlock()
	}
	return infos
}

// Info returns a single session's metadata.
func (s *Service) Info(id string) (*SessionInfo, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.info(), nil
}

// ApplyGate resolves a catalog gate by name and applies it to the session's
// register at the given positions.
func (s *Service) ApplyGate(id, gateName string, param float64, positions []int) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	g, err := gate.FromName(gateName, param)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed = time.Now().UTC()
	return sess.reg.ApplyGate(g, positions...)
}

// Measure samples the given positions, collapses the session's register and
// persists the outcome.
func (s *Service) Measure(id string, positions []int) ([]int, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed = time.Now().UTC()

	outcome, err := sess.reg.Measure(positions...)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RecordMeasurement(id, positions, outcome); err != nil {
		s.log.Error().Err(err).Str("session", id).Msg("Failed to persist measurement")
	}
	return outcome, nil
}

// MeasureAll measures every qubit of the session's register.
func (s *Service) MeasureAll(id string) ([]int, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	positions := make([]int, sess.reg.Size())
	for i := range positions {
		positions[i] = i
	}
	return s.Measure(id, positions)
}

// State returns a copy of the session's amplitude vector.
func (s *Service) State(id string) (state.Vector, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.reg.StateVector(), nil
}

// Probabilities returns the Born-rule distribution over basis states.
func (s *Service) Probabilities(id string) ([]float64, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.reg.Probabilities(), nil
}

// MeasuredBits returns the session's recorded classical bits by position.
func (s *Service) MeasuredBits(id string) (map[int]int, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.reg.MeasuredBits(), nil
}

// Measurements returns the session's persisted measurement history.
func (s *Service) Measurements(id string) ([]MeasurementRecord, error) {
	if _, err := s.get(id); err != nil {
		return nil, err
	}
	return s.repo.ListMeasurements(id)
}

// Snapshot captures the session's current state under a label and persists
// it. Returns the snapshot id.
func (s *Service) Snapshot(id, label string) (int64, error) {
	sess, err := s.get(id)
	if err != nil {
		return 0, err
	}

	sess.mu.Lock()
	snap := NewSnapshot(id, label, sess.reg.Size(), sess.reg.StateVector())
	sess.mu.Unlock()

	return s.repo.SaveSnapshot(snap)
}

// Snapshots lists the session's snapshot metadata.
func (s *Service) Snapshots(id string) ([]Snapshot, error) {
	if _, err := s.get(id); err != nil {
		return nil, err
	}
	return s.repo.ListSnapshots(id)
}

// Restore replaces the session's register with a persisted snapshot. All
// classical bits recorded since the snapshot are discarded; the restored
// register is fully coherent again.
func (s *Service) Restore(id string, snapshotID int64) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	snap, err := s.repo.GetSnapshot(snapshotID)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("snapshot %d not found", snapshotID)
	}
	if snap.SessionID != id {
		return fmt.Errorf("snapshot %d belongs to another session", snapshotID)
	}

	v, err := snap.Vector()
	if err != nil {
		return err
	}

	reg, err := register.FromVector(v, measure.NewSampler(s.nextSeed(), s.log), s.log)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.reg = reg
	sess.lastUsed = time.Now().UTC()
	s.log.Info().Str("session", id).Int64("snapshot", snapshotID).Msg("Session restored")
	return nil
}

// Shots repeatedly samples a full measurement of the session's current
// state without collapsing it, invoking fn once per shot. fn returning an
// error stops the stream.
func (s *Service) Shots(id string, count int, fn func(shot []int) error) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	v := sess.reg.StateVector()
	n := sess.reg.Size()
	shots := sess.shots
	sess.lastUsed = time.Now().UTC()
	sess.mu.Unlock()

	positions := make([]int, n)
	for i := range positions {
		positions[i] = i
	}

	for i := 0; i < count; i++ {
		outcome, _, err := shots.Sample(v, positions)
		if err != nil {
			return err
		}
		if err := fn(outcome); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a session and its persisted results.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return SessionNotFoundError{ID: id}
	}

	if err := s.repo.DeleteSession(id); err != nil {
		return err
	}
	s.log.Info().Str("session", id).Msg("Session deleted")
	return nil
}

// PurgeIdle drops sessions unused for longer than ttl, along with their
// persisted results. Returns how many were removed.
func (s *Service) PurgeIdle(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)

	s.mu.Lock()
	var stale []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.lastUsed.Before(cutoff) {
			stale = append(stale, id)
		}
		sess.mu.Unlock()
	}
	for _, id := range stale {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, id := range stale {
		if err := s.repo.DeleteSession(id); err != nil {
			s.log.Error().Err(err).Str("session", id).Msg("Failed to purge session results")
		}
	}

	if len(stale) > 0 {
		s.log.Info().Int("purged", len(stale)).Msg("Idle sessions purged")
	}
	return len(stale)
}
