package server

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/aristath/qsim/internal/modules/simulation"
)

func newTestSystemHandlers(t *testing.T) *SystemHandlers {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			positions TEXT NOT NULL,
			outcome TEXT NOT NULL,
			measured_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			label TEXT NOT NULL DEFAULT '',
			qubits INTEGER NOT NULL,
			payload BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	require.NoError(t, err)

	repo := simulation.NewRepository(db, zerolog.Nop())
	service := simulation.NewService(repo, 10, 1, zerolog.Nop())
	return NewSystemHandlers(zerolog.Nop(), t.TempDir(), nil, service)
}

func TestHandleHealth(t *testing.T) {
	h := newTestSystemHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestHandleSystemStatus(t *testing.T) {
	h := newTestSystemHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	h.HandleSystemStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 0, resp.LiveSessions)
	assert.GreaterOrEqual(t, resp.UptimeHours, 0.0)
	assert.GreaterOrEqual(t, resp.RAMPercent, 0.0)
}
