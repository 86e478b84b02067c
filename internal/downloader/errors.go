// Package downloader installs data packages from the distribution
// server into a local data directory, verifying archives against the
// index checksums.
package downloader

import "errors"

// Sentinel errors for download operations.
var (
	// ErrChecksumMismatch indicates a downloaded or installed archive whose
	// SHA-256 does not match the index.
	ErrChecksumMismatch = errors.New("downloader: checksum mismatch")

	// ErrUnsafePath indicates an archive member whose name would escape the
	// installation directory.
	ErrUnsafePath = errors.New("downloader: archive member path escapes destination")

	// ErrNoDataDir indicates an empty installation directory.
	ErrNoDataDir = errors.New("downloader: data directory not set")
)
