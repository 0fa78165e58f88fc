package robot

import (
	"context"
	"time"

	"github.com/entwanne/root-robot/pkg/driver"
)

// DefaultNoteDuration is used when the caller passes a zero duration.
const DefaultNoteDuration = 1 * time.Second

// Sound plays notes and spoken phrases.
type Sound struct {
	drv driver.Driver
}

// Play plays a frequency (Hz) for the given duration. A zero duration plays
// for DefaultNoteDuration.
func (s *Sound) Play(ctx context.Context, frequency uint32, duration time.Duration) error {
	if duration == 0 {
		duration = DefaultNoteDuration
	}
	return s.drv.PlayNote(ctx, frequency, duration)
}

// Stop stops any playing note.
func (s *Sound) Stop(ctx context.Context) error {
	return s.drv.StopNote(ctx)
}

// Say speaks a phrase. With wait it blocks until speech finishes.
func (s *Sound) Say(ctx context.Context, phrase string, wait bool) error {
	return s.drv.SayPhrase(ctx, phrase, wait)
}
