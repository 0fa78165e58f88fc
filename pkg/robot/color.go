package robot

import (
	"context"
	"sync"

	"github.com/entwanne/root-robot/pkg/driver"
)

// PositionCount is the number of addressable color sensor positions across
// the two sensor chips.
const PositionCount = 32

// positionsPerBank is how many positions one driver read covers.
const positionsPerBank = 8

// Calibration holds the per-channel normalization denominators.
type Calibration struct {
	// Ambient is the reading for a light surface with no illumination.
	Ambient int

	// Red, Green and Blue are the readings for a white surface under the
	// matching illumination.
	Red   int
	Green int
	Blue  int
}

// DefaultCalibration returns the factory calibration profile.
func DefaultCalibration() Calibration {
	return Calibration{
		Ambient: 400,
		Red:     600,
		Green:   200,
		Blue:    700,
	}
}

// CalibrationUpdate is a partial calibration change. Nil fields leave the
// current value untouched.
type CalibrationUpdate struct {
	Ambient *int
	Red     *int
	Green   *int
	Blue    *int
}

// Color reads the robot's ground-facing color sensors. Each read samples a
// position under four lighting conditions and normalizes the result against
// the calibration profile into a 0-255 RGB triple.
type Color struct {
	drv driver.Driver

	mu          sync.Mutex
	calibration Calibration
}

// Calibration returns the current calibration profile.
func (c *Color) Calibration() Calibration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calibration
}

// Calibrate overwrites the supplied calibration fields, leaving the others
// untouched.
func (c *Color) Calibrate(update CalibrationUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if update.Ambient != nil {
		c.calibration.Ambient = *update.Ambient
	}
	if update.Red != nil {
		c.calibration.Red = *update.Red
	}
	if update.Green != nil {
		c.calibration.Green = *update.Green
	}
	if update.Blue != nil {
		c.calibration.Blue = *update.Blue
	}
}

// Reset restores the factory calibration profile.
func (c *Color) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calibration = DefaultCalibration()
}

// Read reads one position. Negative positions wrap modulo PositionCount, so
// -1 is the last position.
func (c *Color) Read(ctx context.Context, position int) (RGB, error) {
	position = ((position % PositionCount) + PositionCount) % PositionCount
	bank := driver.ColorSensor(position / positionsPerBank)

	data, err := c.readBank(ctx, bank)
	if err != nil {
		return RGB{}, err
	}
	return c.normalize(data[position%positionsPerBank]), nil
}

// ReadRange reads the positions selected by start, stop and step with
// Python-slice semantics: stop is exclusive, negative indices count from the
// end, out-of-range bounds are clamped, and a negative step walks backwards.
// A zero step reads every position from start to stop.
func (c *Color) ReadRange(ctx context.Context, start, stop, step int) ([]RGB, error) {
	if step == 0 {
		step = 1
	}
	lo, hi := adjustIndices(start, stop, step, PositionCount)

	banks := make(map[driver.ColorSensor][positionsPerBank]sample)
	var out []RGB

	read := func(position int) error {
		bank := driver.ColorSensor(position / positionsPerBank)
		data, ok := banks[bank]
		if !ok {
			var err error
			data, err = c.readBank(ctx, bank)
			if err != nil {
				return err
			}
			banks[bank] = data
		}
		out = append(out, c.normalize(data[position%positionsPerBank]))
		return nil
	}

	if step > 0 {
		for i := lo; i < hi; i += step {
			if err := read(i); err != nil {
				return nil, err
			}
		}
	} else {
		for i := lo; i > hi; i += step {
			if err := read(i); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// ReadAll reads all positions in order.
func (c *Color) ReadAll(ctx context.Context) ([]RGB, error) {
	return c.ReadRange(ctx, 0, PositionCount, 1)
}

// sample is one position's reading under the four lighting conditions.
type sample struct {
	black, red, green, blue int
}

// readBank reads one sensor bank under all four lighting conditions.
func (c *Color) readBank(ctx context.Context, bank driver.ColorSensor) ([positionsPerBank]sample, error) {
	var samples [positionsPerBank]sample

	channels := []struct {
		lighting driver.ColorLighting
		set      func(*sample, int)
	}{
		{driver.LightingOff, func(s *sample, v int) { s.black = v }},
		{driver.LightingRed, func(s *sample, v int) { s.red = v }},
		{driver.LightingGreen, func(s *sample, v int) { s.green = v }},
		{driver.LightingBlue, func(s *sample, v int) { s.blue = v }},
	}

	for _, ch := range channels {
		data, err := c.drv.ColorData(ctx, bank, ch.lighting, driver.FormatADC)
		if err != nil {
			return samples, err
		}
		for i := 0; i < positionsPerBank && i < len(data); i++ {
			ch.set(&samples[i], int(data[i]))
		}
	}
	return samples, nil
}

// normalize converts one raw sample into a display RGB triple: the ambient
// (black) reading is subtracted from each channel, each result is rescaled
// against its calibration denominator, offset by the normalized ambient
// level and clamped to 0-255.
func (c *Color) normalize(s sample) RGB {
	cal := c.Calibration()

	black := int(normalizeComponent(s.black, cal.Ambient, 0))
	return RGB{
		R: normalizeComponent(s.red-s.black, cal.Red, black),
		G: normalizeComponent(s.green-s.black, cal.Green, black),
		B: normalizeComponent(s.blue-s.black, cal.Blue, black),
	}
}

// normalizeComponent rescales one channel value, flooring negatives at zero
// and capping the result at 255.
func normalizeComponent(value, denominator, base int) uint8 {
	if value < 0 {
		value = 0
	}
	v := 255*value/denominator + base
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// adjustIndices clamps start and stop for a sequence of length n the way a
// Python slice does.
func adjustIndices(start, stop, step, n int) (int, int) {
	if start < 0 {
		start += n
		if start < 0 {
			if step < 0 {
				start = -1
			} else {
				start = 0
			}
		}
	} else if start >= n {
		if step < 0 {
			start = n - 1
		} else {
			start = n
		}
	}

	if stop < 0 {
		stop += n
		if stop < 0 {
			if step < 0 {
				stop = -1
			} else {
				stop = 0
			}
		}
	} else if stop >= n {
		if step < 0 {
			stop = n - 1
		} else {
			stop = n
		}
	}

	return start, stop
}
