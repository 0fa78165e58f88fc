package robot

import (
	"context"

	"github.com/entwanne/root-robot/pkg/driver"
)

// Marker raises and lowers the drawing marker. The marker and eraser share
// one physical actuator with three positions: up, marker down, eraser down;
// lowering one implicitly raises the other.
type Marker struct {
	drv driver.Driver
}

// Down lowers the marker.
func (m *Marker) Down(ctx context.Context, wait bool) error {
	return m.drv.SetMarkerEraser(ctx, driver.ToolMarkerDown, wait)
}

// Up raises the tool.
func (m *Marker) Up(ctx context.Context, wait bool) error {
	return m.drv.SetMarkerEraser(ctx, driver.ToolUp, wait)
}

// Eraser raises and lowers the eraser half of the tool actuator.
type Eraser struct {
	drv driver.Driver
}

// Down lowers the eraser.
func (e *Eraser) Down(ctx context.Context, wait bool) error {
	return e.drv.SetMarkerEraser(ctx, driver.ToolEraserDown, wait)
}

// Up raises the tool.
func (e *Eraser) Up(ctx context.Context, wait bool) error {
	return e.drv.SetMarkerEraser(ctx, driver.ToolUp, wait)
}
