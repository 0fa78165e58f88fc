// Package log provides structured capture of robot protocol activity.
//
// The package defines a Logger interface that the session, event engine and
// transport components report to. Events are structured records (packets,
// robot events, state changes, errors) rather than formatted text, so they
// can be written compactly to CBOR capture files and analyzed later, or
// forwarded to slog for console output during development.
//
// Logging is optional everywhere: components accept a Logger and treat nil
// as disabled.
package log
