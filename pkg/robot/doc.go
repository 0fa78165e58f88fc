// Package robot is the host-side control facade for one Root robot.
//
// A session is acquired in two steps: Discover queries the transport for
// advertising robots, Open claims one exclusively and returns a live Robot.
// The Robot owns the driver connection for its lifetime and is the sole
// gateway to it; the actuator groups (Motor, Marker, Eraser, LED, Sound),
// the color reader and the event engine are constructed against it at open
// time and stay valid until Close.
//
// Close is idempotent and releases the connection exactly once; call it from
// a defer so teardown runs on every exit path:
//
//	r, err := robot.Open(ctx, dev)
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	if err := r.Events.EnableAll(ctx); err != nil {
//		return err
//	}
//	r.Events.SetCallback(driver.KindBumper, onBump)
//	task := r.Events.ProcessAsync(ctx, true)
//	defer task.Stop()
//
//	return r.Motor.Drive(ctx, 150, true)
package robot
