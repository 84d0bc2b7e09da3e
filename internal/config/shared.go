package config

import "sync"

// The command prefix lives behind a process-wide mutex. Load publishes it
// once at startup, and command-aware module builders read it once, at
// build time, as the default for a module with no per-module override;
// modules keep their own copy after that. The lock is held only for the
// read or write itself, never across a facade call or a network send.
var (
	sharedMu          sync.Mutex
	sharedCommandChar = "!"
)

// CommandChar returns the process-wide command prefix.
func CommandChar() string {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return sharedCommandChar
}

// SetCommandChar replaces the process-wide command prefix. Called by Load;
// exposed for tests that need a non-default prefix.
func SetCommandChar(s string) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	sharedCommandChar = s
}
