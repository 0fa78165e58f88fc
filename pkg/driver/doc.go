// Package driver defines the boundary between the robot facade and the
// concrete transports that talk to a physical Root robot.
//
// A Driver is the capability object for one open connection: every command
// and query is a single request/response round-trip, and Events exposes the
// unbounded, ordered stream of records the robot emits on its own. Transports
// (serial bridge, network bridge, test simulator) implement Driver; the
// higher layers in pkg/robot and pkg/events only ever consume it.
//
// # Round-trip semantics
//
// Commands issued sequentially on one Driver execute in issuance order; the
// transport must not pipeline. Blocking variants of motion commands (wait =
// true) return once the robot reports completion for that specific request.
//
// # Event stream
//
// Events returns a channel that carries every device-originated record in
// emission order. The channel is closed when the connection ends; Err then
// reports the stream fault, or nil after a clean Close.
package driver
