package downloader

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/corpora-dev/corpora/internal/index"
)

// Status describes a package's installation state.
type Status int

const (
	// StatusNotInstalled means the archive is absent from the data directory.
	StatusNotInstalled Status = iota
	// StatusInstalled means the archive is present and matches the index.
	StatusInstalled
	// StatusStale means the archive is present but its checksum differs
	// from the index, usually because the index ships a newer revision.
	StatusStale
	// StatusPartial means the archive is present but its extracted copy
	// is missing.
	StatusPartial
)

// String returns the status in the form the CLI prints.
func (s Status) String() string {
	switch s {
	case StatusNotInstalled:
		return "not installed"
	case StatusInstalled:
		return "installed"
	case StatusStale:
		return "out of date"
	case StatusPartial:
		return "partially installed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ArchivePath returns where the package's archive lives under dataDir.
func ArchivePath(pkg *index.Package, dataDir string) string {
	return filepath.Join(dataDir, pkg.Category, pkg.ArchiveName())
}

// ExtractedPath returns where the package's unzipped copy lives under
// dataDir.
func ExtractedPath(pkg *index.Package, dataDir string) string {
	name := strings.TrimSuffix(pkg.ArchiveName(), ".zip")
	return filepath.Join(dataDir, pkg.Category, name)
}

// ComputeStatus inspects the data directory and reports the package's
// installation state.
func ComputeStatus(pkg *index.Package, dataDir string) (Status, error) {
	if dataDir == "" {
		return StatusNotInstalled, ErrNoDataDir
	}
	archive := ArchivePath(pkg, dataDir)
	if _, err := os.Stat(archive); err != nil {
		if os.IsNotExist(err) {
			return StatusNotInstalled, nil
		}
		return StatusNotInstalled, fmt.Errorf("stat %s: %w", archive, err)
	}

	sum, err := fileSHA256(archive)
	if err != nil {
		return StatusNotInstalled, err
	}
	if !strings.EqualFold(sum, pkg.Checksum) {
		return StatusStale, nil
	}

	if pkg.Unzip {
		extracted := ExtractedPath(pkg, dataDir)
		if _, err := os.Stat(extracted); err != nil {
			return StatusPartial, nil
		}
		for _, name := range pkg.Contents {
			if _, err := os.Stat(filepath.Join(extracted, filepath.FromSlash(name))); err != nil {
				return StatusPartial, nil
			}
		}
	}
	return StatusInstalled, nil
}

// Verify fails unless the package is fully installed with a matching
// checksum.
func Verify(pkg *index.Package, dataDir string) error {
	status, err := ComputeStatus(pkg, dataDir)
	if err != nil {
		return err
	}
	switch status {
	case StatusInstalled:
		return nil
	case StatusStale:
		return fmt.Errorf("%w: package %q", ErrChecksumMismatch, pkg.ID)
	default:
		return fmt.Errorf("downloader: package %q is %s", pkg.ID, status)
	}
}

// fileSHA256 returns the hex SHA-256 of a file.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
