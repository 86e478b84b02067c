package downloader

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/corpora-dev/corpora/internal/index"
)

// ProgressFunc is called as archive bytes arrive. total is -1 when the
// server does not report a size.
type ProgressFunc func(pkgID string, written, total int64)

// Options controls a Download call.
type Options struct {
	// Force reinstalls even when the package is already up to date.
	Force bool
	// Progress, when set, receives byte-level download progress.
	Progress ProgressFunc
}

// Downloader installs packages into a data directory.
type Downloader struct {
	fetcher index.Fetcher
	dataDir string
	log     *slog.Logger
}

// New creates a downloader installing into dataDir.
func New(fetcher index.Fetcher, dataDir string, log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{fetcher: fetcher, dataDir: dataDir, log: log}
}

// DataDir returns the installation directory.
func (d *Downloader) DataDir() string { return d.dataDir }

// Download installs one package. Up-to-date packages are skipped unless
// forced; the return value reports whether anything was installed. The
// archive is fetched to a temporary file, checked against the index
// checksum, and moved into place atomically, so a failed download never
// leaves a half-written archive behind.
func (d *Downloader) Download(ctx context.Context, pkg *index.Package, opts Options) (bool, error) {
	if d.dataDir == "" {
		return false, ErrNoDataDir
	}

	status, err := ComputeStatus(pkg, d.dataDir)
	if err != nil {
		return false, err
	}
	if status == StatusInstalled && !opts.Force {
		d.log.Debug("package up to date", "package", pkg.ID)
		return false, nil
	}

	// A partial install with a good archive only needs extraction.
	if status == StatusPartial && !opts.Force {
		if err := d.extract(pkg); err != nil {
			return false, err
		}
		d.log.Info("package extracted", "package", pkg.ID)
		return true, nil
	}

	archive := ArchivePath(pkg, d.dataDir)
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(archive), err)
	}

	if err := d.fetchArchive(ctx, pkg, archive, opts.Progress); err != nil {
		return false, err
	}

	if pkg.Unzip {
		if opts.Force {
			if err := os.RemoveAll(ExtractedPath(pkg, d.dataDir)); err != nil {
				return false, fmt.Errorf("remove old copy of %s: %w", pkg.ID, err)
			}
		}
		if err := d.extract(pkg); err != nil {
			return false, err
		}
	}

	d.log.Info("package installed", "package", pkg.ID, "dir", filepath.Dir(archive))
	return true, nil
}

// fetchArchive streams the archive to a temporary file, hashing as it
// goes, and renames it into place once the checksum matches.
func (d *Downloader) fetchArchive(ctx context.Context, pkg *index.Package, dest string, progress ProgressFunc) error {
	body, total, err := d.fetcher.OpenArchive(ctx, pkg)
	if err != nil {
		return err
	}
	defer body.Close()

	if total < 0 && pkg.Size > 0 {
		total = pkg.Size
	}

	t, err := renameio.TempFile("", dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer t.Cleanup()

	h := sha256.New()
	var src io.Reader = io.TeeReader(body, h)
	if progress != nil {
		src = &progressReader{r: src, pkgID: pkg.ID, total: total, fn: progress}
	}
	if _, err := io.Copy(t, src); err != nil {
		return fmt.Errorf("download %s: %w", pkg.ID, err)
	}

	sum := hex.EncodeToString(h.Sum(nil))
	if !strings.EqualFold(sum, pkg.Checksum) {
		return fmt.Errorf("%w: package %q has %s, index says %s",
			ErrChecksumMismatch, pkg.ID, sum, pkg.Checksum)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("install %s: %w", dest, err)
	}
	return nil
}

// extract unpacks the installed archive next to itself.
func (d *Downloader) extract(pkg *index.Package) error {
	archive := ArchivePath(pkg, d.dataDir)
	destDir := filepath.Join(d.dataDir, pkg.Category)
	return Unzip(archive, destDir)
}

// Unzip extracts an archive into destDir, refusing member names that
// would write outside it.
func Unzip(archive, destDir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open %s: %w", archive, err)
	}
	defer r.Close()

	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("%w: %q", ErrUnsafePath, f.Name)
		}
		target := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open member %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return dst.Close()
}

// progressReader reports cumulative bytes read to a ProgressFunc.
type progressReader struct {
	r       io.Reader
	pkgID   string
	total   int64
	written int64
	fn      ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.pkgID, p.written, p.total)
	}
	return n, err
}
