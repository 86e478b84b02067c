package cli

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testServer serves a small index with one plain and one unzip package.
func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	brown := buildArchive(t, map[string]string{
		"brown/ca01": "The Fulton County Grand Jury said Friday",
	})
	treebank := buildArchive(t, map[string]string{
		"treebank/wsj_0001.mrg": "( (S (NP-SBJ Pierre Vinken)))",
	})

	indexDoc := map[string]any{
		"packages": []map[string]any{
			{
				"id": "brown", "name": "Brown Corpus", "category": "corpora",
				"unzip": false, "size": len(brown), "checksum": sumOf(brown),
			},
			{
				"id": "treebank", "name": "Penn Treebank Sample", "category": "corpora",
				"unzip": true, "size": len(treebank), "checksum": sumOf(treebank),
			},
		},
		"collections": []map[string]any{
			{"id": "book", "name": "Book Examples", "children": []string{"brown", "treebank"}},
		},
	}
	indexJSON, err := json.Marshal(indexDoc)
	if err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/index.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write(indexJSON)
	})
	mux.HandleFunc("/brown.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(brown)
	})
	mux.HandleFunc("/treebank.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(treebank)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func buildArchive(t *testing.T, members map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func sumOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// runCLI executes the root command with common isolation flags.
func runCLI(t *testing.T, srv *httptest.Server, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CORPORA_DATA", "")
	t.Setenv("CORPORA_INDEX_URL", "")
	t.Setenv("CORPORA_PROXY", "")

	full := append([]string{
		"--config", filepath.Join(t.TempDir(), "no-config.yaml"),
		"--dir", dataDir,
		"--url", srv.URL + "/index.json",
		"--non-interactive", "--no-color", "--quiet",
	}, args...)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestDownloadCommand(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	out, err := runCLI(t, srv, dataDir, "download", "brown")
	if err != nil {
		t.Fatalf("download failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "brown installed") {
		t.Errorf("output = %q, want install confirmation", out)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "corpora", "brown.zip")); err != nil {
		t.Errorf("archive missing: %v", err)
	}

	out, err = runCLI(t, srv, dataDir, "download", "brown")
	if err != nil {
		t.Fatalf("second download failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("output = %q, want up-to-date skip", out)
	}
}

func TestDownloadCommand_Collection(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	out, err := runCLI(t, srv, dataDir, "download", "book")
	if err != nil {
		t.Fatalf("download failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "brown installed") || !strings.Contains(out, "treebank installed") {
		t.Errorf("output = %q, want both collection members", out)
	}
	// The unzip package gets an extracted copy.
	if _, err := os.Stat(filepath.Join(dataDir, "corpora", "treebank", "wsj_0001.mrg")); err != nil {
		t.Errorf("extracted file missing: %v", err)
	}
}

func TestDownloadCommand_UnknownID(t *testing.T) {
	srv := testServer(t)

	out, err := runCLI(t, srv, t.TempDir(), "download", "nonesuch")
	if err == nil {
		t.Fatalf("expected error, got output %q", out)
	}
	if !strings.Contains(err.Error(), "nonesuch") {
		t.Errorf("err = %v, want offending id named", err)
	}
}

func TestDownloadCommand_NoArgsHeadless(t *testing.T) {
	srv := testServer(t)

	_, err := runCLI(t, srv, t.TempDir(), "download")
	if err == nil || !strings.Contains(err.Error(), "corpora list") {
		t.Errorf("err = %v, want hint to run corpora list", err)
	}
}

func TestListCommand(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	if _, err := runCLI(t, srv, dataDir, "download", "brown"); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, srv, dataDir, "list")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "brown") || !strings.Contains(out, "installed") {
		t.Errorf("output = %q, want brown marked installed", out)
	}
	if !strings.Contains(out, "treebank") || !strings.Contains(out, "not installed") {
		t.Errorf("output = %q, want treebank marked not installed", out)
	}

	out, err = runCLI(t, srv, dataDir, "list", "--installed")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "treebank") {
		t.Errorf("output = %q, --installed must hide treebank", out)
	}
}

func TestListCommand_Collections(t *testing.T) {
	srv := testServer(t)

	out, err := runCLI(t, srv, t.TempDir(), "list", "--collections")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "book") || !strings.Contains(out, "brown, treebank") {
		t.Errorf("output = %q, want collection with members", out)
	}
}

func TestInfoCommand(t *testing.T) {
	srv := testServer(t)

	out, err := runCLI(t, srv, t.TempDir(), "info", "brown")
	if err != nil {
		t.Fatalf("info failed: %v\n%s", err, out)
	}
	for _, want := range []string{"brown", "Brown Corpus", "corpora", "corpora download brown"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestVerifyCommand(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	if _, err := runCLI(t, srv, dataDir, "download", "brown"); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, srv, dataDir, "verify", "brown")
	if err != nil {
		t.Fatalf("verify failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "installed") {
		t.Errorf("output = %q", out)
	}

	// Corrupt the archive and expect failure.
	archive := filepath.Join(dataDir, "corpora", "brown.zip")
	if err := os.WriteFile(archive, []byte("corrupted"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, srv, dataDir, "verify", "brown")
	if err == nil {
		t.Fatalf("expected verify failure, got %q", out)
	}
	if !strings.Contains(out, "out of date") {
		t.Errorf("output = %q, want out-of-date report", out)
	}
}

func TestPathCommand(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	out, err := runCLI(t, srv, dataDir, "path")
	if err != nil {
		t.Fatalf("path failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, dataDir) {
		t.Errorf("output = %q, want data dir listed", out)
	}
}

func TestShowCommand(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	if _, err := runCLI(t, srv, dataDir, "download", "brown"); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, srv, dataDir, "show", "corpora:corpora/brown/ca01", "--format", "text")
	if err != nil {
		t.Fatalf("show failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Fulton County Grand Jury") {
		t.Errorf("output = %q, want corpus text from inside the zip", out)
	}
}

func TestFetchCommand(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	if _, err := runCLI(t, srv, dataDir, "download", "brown"); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(t.TempDir(), "ca01.txt")
	out, err := runCLI(t, srv, dataDir, "fetch", "corpora:corpora/brown/ca01", "--output", dest)
	if err != nil {
		t.Fatalf("fetch failed: %v\n%s", err, out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Fulton County") {
		t.Errorf("content = %q", data)
	}

	if _, err := runCLI(t, srv, dataDir, "fetch", "corpora:corpora/brown/ca01", "--output", dest); err == nil {
		t.Error("expected refusal to overwrite existing file")
	}
}

func TestDownloadCommand_ForceAfterCorruption(t *testing.T) {
	srv := testServer(t)
	dataDir := t.TempDir()

	if _, err := runCLI(t, srv, dataDir, "download", "brown"); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(dataDir, "corpora", "brown.zip")
	if err := os.WriteFile(archive, []byte("corrupted"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, srv, dataDir, "download", "brown", "--force")
	if err != nil {
		t.Fatalf("forced download failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "brown installed") {
		t.Errorf("output = %q", out)
	}

	info, err := os.Stat(archive)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == int64(len("corrupted")) {
		t.Error("archive not replaced")
	}

	// Reset for later tests sharing the flag variable.
	downloadFlags.force = false
}

func TestVersionFlag(t *testing.T) {
	srv := testServer(t)

	out, err := runCLI(t, srv, t.TempDir(), "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "corpora v") {
		t.Errorf("output = %q", out)
	}
}
