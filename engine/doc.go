// Package engine opens SQLite connections through the pure-Go
// modernc.org/sqlite driver so every package shares one driver setup.
package engine
