package simulation

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/qsim/internal/modules/state"
)

// Snapshot is a serializable capture of a register's amplitude vector.
// Amplitudes are split into parallel real and imaginary slices because
// msgpack has no native complex type.
type Snapshot struct {
	ID        int64     `msgpack:"-"`
	SessionID string    `msgpack:"session_id"`
	Label     string    `msgpack:"label"`
	Qubits    int       `msgpack:"qubits"`
	Re        []float64 `msgpack:"re"`
	Im        []float64 `msgpack:"im"`
	CreatedAt time.Time `msgpack:"-"`
}

// NewSnapshot captures an amplitude vector under a label.
func NewSnapshot(sessionID, label string, qubits int, v state.Vector) *Snapshot {
	re := make([]float64, len(v))
	im := make([]float64, len(v))
	for i, a := range v {
		re[i] = real(a)
		im[i] = imag(a)
	}
	return &Snapshot{
		SessionID: sessionID,
		Label:     label,
		Qubits:    qubits,
		Re:        re,
		Im:        im,
		CreatedAt: time.Now().UTC(),
	}
}

// Vector reassembles the captured amplitude vector.
func (s *Snapshot) Vector() (state.Vector, error) {
	if len(s.Re) != len(s.Im) {
		return nil, fmt.Errorf("corrupt snapshot: %d real vs %d imaginary components", len(s.Re), len(s.Im))
	}
	if len(s.Re) != 1<<s.Qubits {
		return nil, fmt.Errorf("corrupt snapshot: %d amplitudes for %d qubit(s)", len(s.Re), s.Qubits)
	}
	v := make(state.Vector, len(s.Re))
	for i := range v {
		v[i] = complex(s.Re[i], s.Im[i])
	}
	return v, nil
}

// Encode serializes the snapshot payload to msgpack.
func (s *Snapshot) Encode() ([]byte, error) {
	payload, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return payload, nil
}

// DecodeSnapshot deserializes a msgpack snapshot payload.
func DecodeSnapshot(payload []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}
