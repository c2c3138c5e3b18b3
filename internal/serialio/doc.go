// Package serialio wraps the host serial transport.
//
// It narrows go.bug.st/serial down to the four operations the RTC setter
// performs (read, write, drain, close) so the transport can be faked in
// tests, and exposes port enumeration for the ports command.
package serialio
