// Package bridge drives the host presentation application through its
// out-of-process automation surface.
//
// The host is an opaque oracle: every operation runs a small per-OS script
// (JXA through osascript on macOS, PowerShell on Windows) that performs the
// automation calls and prints exactly one Result JSON document on stdout.
// Calls are hard-bounded by a wall-clock timeout; on expiry the runner
// process is killed and no partial result is accepted.
package bridge
