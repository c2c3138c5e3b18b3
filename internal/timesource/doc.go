// Package timesource abstracts where the time sent to the device comes from.
//
// Two sources are available:
//   - System: the host clock, the default.
//   - NTP: the host clock corrected by the offset measured against an NTP
//     server, for hosts whose clocks drift.
//
// Both implement the Source interface. A source failure is not fatal to the
// sync: the setter falls back to the host clock with a warning, keeping the
// hook best-effort end to end.
package timesource
