package simulation

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// MeasurementRecord is one persisted measurement outcome.
type MeasurementRecord struct {
	ID         int64
	SessionID  string
	Positions  []int
	Outcome    []int
	MeasuredAt time.Time
}

// Repository persists measurement outcomes and register snapshots in the
// results database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new results repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "results").Logger(),
	}
}

// RecordMeasurement stores one measurement outcome. Positions and bits are
// stored as JSON arrays so the row stays queryable from the sqlite shell.
func (r *Repository) RecordMeasurement(sessionID string, positions, outcome []int) error {
	posJSON, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}
	outJSON, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO measurements (session_id, positions, outcome, measured_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, string(posJSON), string(outJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record measurement: %w", err)
	}
	return nil
}

// ListMeasurements returns a session's measurement history, oldest first.
func (r *Repository) ListMeasurements(sessionID string) ([]MeasurementRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, positions, outcome, measured_at
		FROM measurements
		WHERE session_id = ?
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	var records []MeasurementRecord
	for rows.Next() {
		var rec MeasurementRecord
		var posJSON, outJSON string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &posJSON, &outJSON, &rec.MeasuredAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan measurement row")
			continue
		}
		if err := json.Unmarshal([]byte(posJSON), &rec.Positions); err != nil {
			r.log.Warn().Err(err).Int64("id", rec.ID).Msg("Corrupt positions column")
			continue
		}
		if err := json.Unmarshal([]byte(outJSON), &rec.Outcome); err != nil {
			r.log.Warn().Err(err).Int64("id", rec.ID).Msg("Corrupt outcome column")
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveSnapshot persists an encoded snapshot and returns its row id.
func (r *Repository) SaveSnapshot(s *Snapshot) (int64, error) {
	payload, err := s.Encode()
	if err != nil {
		return 0, err
	}

	res, err := r.db.Exec(`
		INSERT INTO snapshots (session_id, label, qubits, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.SessionID, s.Label, s.Qubits, payload, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot id: %w", err)
	}
	return id, nil
}

// GetSnapshot loads one snapshot by row id. Returns nil if it doesn't exist.
func (r *Repository) GetSnapshot(id int64) (*Snapshot, error) {
	var payload []byte
	var createdAt time.Time
	err := r.db.QueryRow(`
		SELECT payload, created_at FROM snapshots WHERE id = ?
	`, id).Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %d: %w", id, err)
	}

	s, err := DecodeSnapshot(payload)
	if err != nil {
		return nil, err
	}
	s.ID = id
	s.CreatedAt = createdAt
	return s, nil
}

// ListSnapshots returns snapshot metadata for a session, newest first.
// Payloads are not loaded.
func (r *Repository) ListSnapshots(sessionID string) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT id, label, qubits, created_at
		FROM snapshots
		WHERE session_id = ?
		ORDER BY id DESC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s := Snapshot{SessionID: sessionID}
		if err := rows.Scan(&s.ID, &s.Label, &s.Qubits, &s.CreatedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan snapshot row")
			continue
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// DeleteSession removes a session's measurements and snapshots.
func (r *Repository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM measurements WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete measurements: %w", err)
	}
	if _, err := r.db.Exec("DELETE FROM snapshots WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return nil
}

// PurgeBefore removes measurement rows older than the cutoff. Snapshots are
// kept until their session is deleted.
func (r *Repository) PurgeBefore(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM measurements WHERE measured_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge measurements: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
