package pipeline

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arxiv2epub/internal/config"
	"arxiv2epub/internal/services"
	"arxiv2epub/internal/services/pandoc"
)

type fakeConverter struct {
	requests []pandoc.Request
	err      error
}

func (f *fakeConverter) Convert(_ context.Context, req pandoc.Request) error {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.OutputPath, []byte("PK\x03\x04fake-epub"), 0o644)
}

func tarGzBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const atomResponse = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Quantization Survey</title>
    <author><name>A. Gholami</name></author>
  </entry>
</feed>`

func testServer(t *testing.T, sources map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/e-print/"):
			id := strings.TrimPrefix(r.URL.Path, "/e-print/")
			body, ok := sources[id]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.Write(body)
		case strings.HasPrefix(r.URL.Path, "/api/query"):
			w.Write([]byte(atomResponse))
		default:
			http.Error(w, "unexpected path "+r.URL.Path, http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(root, "output")
	cfg.Paths.TempDir = filepath.Join(root, "tmp")
	cfg.Arxiv.EPrintBaseURL = baseURL + "/e-print"
	cfg.Arxiv.APIBaseURL = baseURL + "/api/query"
	cfg.Arxiv.RequestTimeout = 5
	cfg.Cover.Enabled = false
	return &cfg
}

func assertTempRootClean(t *testing.T, tempRoot string) {
	t.Helper()
	entries, err := os.ReadDir(tempRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("temp root not cleaned up, leftover entries: %v", names)
	}
}

func TestRunEndToEnd(t *testing.T) {
	source := tarGzBytes(t, map[string]string{
		"main.tex": "\\documentclass{article}\n\\begin{document}\nSee \\cite{x}.\n\\end{document}\n",
		"refs.bib": "@article{x}",
	})
	server := testServer(t, map[string][]byte{"2103.13630": source})
	cfg := testConfig(t, server.URL)
	converter := &fakeConverter{}

	runner := NewRunner(cfg, nil, WithConverter(converter))
	result, err := runner.Run(context.Background(), Options{Input: "2103.13630"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := filepath.Join(cfg.Paths.OutputDir, "2103.13630.epub")
	if result.EPUBPath != want {
		t.Errorf("EPUBPath = %q, want %q", result.EPUBPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected epub in output directory: %v", err)
	}
	if result.Title != "Quantization Survey" {
		t.Errorf("Title = %q, want metadata title", result.Title)
	}
	if len(converter.requests) != 1 {
		t.Fatalf("expected one conversion, got %d", len(converter.requests))
	}
	req := converter.requests[0]
	if filepath.Base(req.InputPath) != "main.tex" {
		t.Errorf("converter input = %q, want main.tex", req.InputPath)
	}
	if req.Title != "Quantization Survey" || len(req.Authors) != 1 {
		t.Errorf("metadata not propagated: %+v", req)
	}
	assertTempRootClean(t, cfg.Paths.TempDir)
}

func TestRunURLInputProducesSameOutput(t *testing.T) {
	source := tarGzBytes(t, map[string]string{"main.tex": "\\begin{document}x\\end{document}"})
	server := testServer(t, map[string][]byte{"2103.13630": source})
	cfg := testConfig(t, server.URL)
	cfg.Arxiv.FetchMetadata = false

	runner := NewRunner(cfg, nil, WithConverter(&fakeConverter{}))
	result, err := runner.Run(context.Background(), Options{Input: "https://arxiv.org/abs/2103.13630"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if filepath.Base(result.EPUBPath) != "2103.13630.epub" {
		t.Errorf("EPUBPath = %q", result.EPUBPath)
	}
}

func TestRunMainFileOverride(t *testing.T) {
	source := tarGzBytes(t, map[string]string{
		"main.tex":  "decoy",
		"other.tex": "\\begin{document}real\\end{document}",
	})
	server := testServer(t, map[string][]byte{"2103.13630": source})
	cfg := testConfig(t, server.URL)
	cfg.Arxiv.FetchMetadata = false
	converter := &fakeConverter{}

	runner := NewRunner(cfg, nil, WithConverter(converter))
	if _, err := runner.Run(context.Background(), Options{Input: "2103.13630", MainFile: "other.tex"}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if filepath.Base(converter.requests[0].InputPath) != "other.tex" {
		t.Errorf("override ignored, converted %q", converter.requests[0].InputPath)
	}
}

func TestRunInvalidIdentifier(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:0")
	runner := NewRunner(cfg, nil, WithConverter(&fakeConverter{}))

	_, err := runner.Run(context.Background(), Options{Input: "not-a-paper"})
	if !errors.Is(err, services.ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestRunNetworkFailureCleansUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	cfg := testConfig(t, server.URL)
	cfg.Arxiv.FetchMetadata = false

	runner := NewRunner(cfg, nil, WithConverter(&fakeConverter{}))
	_, err := runner.Run(context.Background(), Options{Input: "2103.13630"})
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	assertTempRootClean(t, cfg.Paths.TempDir)
}

func TestRunFetchErrorForUnknownPaper(t *testing.T) {
	server := testServer(t, nil)
	cfg := testConfig(t, server.URL)
	cfg.Arxiv.FetchMetadata = false

	runner := NewRunner(cfg, nil, WithConverter(&fakeConverter{}))
	_, err := runner.Run(context.Background(), Options{Input: "2103.13630"})
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	assertTempRootClean(t, cfg.Paths.TempDir)
}

func TestRunNoTexFound(t *testing.T) {
	source := tarGzBytes(t, map[string]string{"README.md": "no tex"})
	server := testServer(t, map[string][]byte{"2103.13630": source})
	cfg := testConfig(t, server.URL)
	cfg.Arxiv.FetchMetadata = false

	runner := NewRunner(cfg, nil, WithConverter(&fakeConverter{}))
	_, err := runner.Run(context.Background(), Options{Input: "2103.13630"})
	if !errors.Is(err, services.ErrNoTexFile) {
		t.Fatalf("expected ErrNoTexFile, got %v", err)
	}
	assertTempRootClean(t, cfg.Paths.TempDir)
}

func TestRunConversionFailureCleansUp(t *testing.T) {
	source := tarGzBytes(t, map[string]string{"main.tex": "\\begin{document}x\\end{document}"})
	server := testServer(t, map[string][]byte{"2103.13630": source})
	cfg := testConfig(t, server.URL)
	cfg.Arxiv.FetchMetadata = false
	converter := &fakeConverter{err: services.Wrap(services.ErrConversion, "convert", "pandoc", "boom", nil)}

	runner := NewRunner(cfg, nil, WithConverter(converter))
	_, err := runner.Run(context.Background(), Options{Input: "2103.13630"})
	if !errors.Is(err, services.ErrConversion) {
		t.Fatalf("expected ErrConversion, got %v", err)
	}
	assertTempRootClean(t, cfg.Paths.TempDir)
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "2103.13630.epub")); !os.IsNotExist(err) {
		t.Error("no epub should be published on conversion failure")
	}
}

func TestRunKeepTempRetainsWorkspace(t *testing.T) {
	source := tarGzBytes(t, map[string]string{"main.tex": "\\begin{document}x\\end{document}"})
	server := testServer(t, map[string][]byte{"2103.13630": source})
	cfg := testConfig(t, server.URL)
	cfg.Arxiv.FetchMetadata = false

	runner := NewRunner(cfg, nil, WithConverter(&fakeConverter{}))
	if _, err := runner.Run(context.Background(), Options{Input: "2103.13630", KeepTemp: true}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	entries, err := os.ReadDir(cfg.Paths.TempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("expected retained workspace under temp root")
	}
}

var _ pandoc.Client = (*fakeConverter)(nil)
