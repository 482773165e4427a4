package payment

import (
	"time"

	"github.com/rs/zerolog/log"
)

// timed wraps an operation with duration and outcome logging, so call
// sites compose instrumentation instead of repeating it.
func timed(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	evt := log.Debug()
	if err != nil {
		evt = log.Warn().Err(err)
	}
	evt.Str("operation", op).Dur("duration", time.Since(start)).Msg("operation finished")
	return err
}
