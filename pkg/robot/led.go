package robot

import (
	"context"
	"sync"

	"github.com/entwanne/root-robot/pkg/driver"
)

// RGB is a light ring color.
type RGB struct {
	R, G, B uint8
}

// LED controls the robot's light ring. It remembers the last applied color:
// mode-only calls re-send it, so switching Off and back On restores the
// previous color.
type LED struct {
	drv driver.Driver

	mu    sync.Mutex
	anim  driver.LEDAnimation
	color RGB
}

// Color returns the last applied color.
func (l *LED) Color() RGB {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

// Animation returns the last applied animation mode.
func (l *LED) Animation() driver.LEDAnimation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.anim
}

// Off turns the ring off. The stored color is preserved.
func (l *LED) Off(ctx context.Context) error {
	return l.update(ctx, driver.LEDOff, nil)
}

// On shows a steady color. With no argument the last applied color is
// re-sent.
func (l *LED) On(ctx context.Context, color ...RGB) error {
	return l.update(ctx, driver.LEDOn, first(color))
}

// Blink blinks the given color, or the last applied one.
func (l *LED) Blink(ctx context.Context, color ...RGB) error {
	return l.update(ctx, driver.LEDBlink, first(color))
}

// Spin spins the given color around the ring, or the last applied one.
func (l *LED) Spin(ctx context.Context, color ...RGB) error {
	return l.update(ctx, driver.LEDSpin, first(color))
}

// update applies the animation, storing the new state only after the
// command round-trip succeeds.
func (l *LED) update(ctx context.Context, anim driver.LEDAnimation, color *RGB) error {
	l.mu.Lock()
	c := l.color
	if color != nil {
		c = *color
	}
	l.mu.Unlock()

	if err := l.drv.SetLEDAnimation(ctx, anim, c.R, c.G, c.B); err != nil {
		return err
	}

	l.mu.Lock()
	l.anim = anim
	l.color = c
	l.mu.Unlock()
	return nil
}

func first(colors []RGB) *RGB {
	if len(colors) == 0 {
		return nil
	}
	return &colors[0]
}
