package simulation

import (
	"time"

	"github.com/rs/zerolog"
)

// Janitor is a scheduled job that purges idle sessions and trims old
// measurement rows from the results database.
type Janitor struct {
	service *Service
	ttl     time.Duration
	log     zerolog.Logger
}

// NewJanitor creates the cleanup job. Sessions idle longer than ttl are
// dropped; measurement rows older than ten times the ttl are deleted.
func NewJanitor(service *Service, ttl time.Duration, log zerolog.Logger) *Janitor {
	return &Janitor{
		service: service,
		ttl:     ttl,
		log:     log.With().Str("job", "janitor").Logger(),
	}
}

// Name implements the scheduler Job interface.
func (j *Janitor) Name() string { return "session_janitor" }

// Run implements the scheduler Job interface.
func (j *Janitor) Run() error {
	purged := j.service.PurgeIdle(j.ttl)

	cutoff := time.Now().UTC().Add(-10 * j.ttl)
	trimmed, err := j.service.repo.PurgeBefore(cutoff)
	if err != nil {
		return err
	}

	j.log.Debug().
		Int("sessions_purged", purged).
		Int64("rows_trimmed", trimmed).
		Msg("Janitor pass complete")
	return nil
}
