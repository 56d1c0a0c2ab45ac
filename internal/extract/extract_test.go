package extract

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"arxiv2epub/internal/services"
)

func writeTar(t *testing.T, w *tar.Writer, name, content string) {
	t.Helper()
	if err := w.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
}

func makeTarGz(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		writeTar(t, tw, name, content)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "download")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func makeTar(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		writeTar(t, tw, name, content)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "download")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func makeZip(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "download")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func makeBareGz(t *testing.T, dir, content string) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "download")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{"main.tex": "\\documentclass{article}\n\\begin{document}x\\end{document}\n"}

	cases := []struct {
		name string
		path string
		want Format
	}{
		{"tar.gz", makeTarGz(t, filepath.Join(dir, mkdir(t, dir, "a")), files), FormatTarGz},
		{"tar", makeTar(t, filepath.Join(dir, mkdir(t, dir, "b")), files), FormatTar},
		{"zip", makeZip(t, filepath.Join(dir, mkdir(t, dir, "c")), files), FormatZip},
		{"bare gz", makeBareGz(t, filepath.Join(dir, mkdir(t, dir, "d")), "\\documentclass{article}"), FormatGzipFile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Detect(tc.path)
			if err != nil {
				t.Fatalf("Detect returned error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Detect = %v, want %v", got, tc.want)
			}
		})
	}
}

func mkdir(t *testing.T, parent, name string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(parent, name), 0o755); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestDetectRejectsUnknownContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download")
	if err := os.WriteFile(path, []byte("%PDF-1.5 not an archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Detect(path)
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if got != FormatUnknown {
		t.Errorf("Detect = %v, want FormatUnknown", got)
	}
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := makeTarGz(t, dir, map[string]string{
		"main.tex":     "\\begin{document}\\end{document}",
		"sections/a.tex": "appendix",
	})
	dest := filepath.Join(dir, "work")

	format, err := Extract(archive, dest, "2103.13630")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if format != FormatTarGz {
		t.Errorf("format = %v, want FormatTarGz", format)
	}
	if _, err := os.Stat(filepath.Join(dest, "main.tex")); err != nil {
		t.Errorf("main.tex missing after extraction: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "sections", "a.tex")); err != nil {
		t.Errorf("nested file missing after extraction: %v", err)
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := makeZip(t, dir, map[string]string{"paper.tex": "content"})
	dest := filepath.Join(dir, "work")

	format, err := Extract(archive, dest, "2103.13630")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if format != FormatZip {
		t.Errorf("format = %v, want FormatZip", format)
	}
	if _, err := os.Stat(filepath.Join(dest, "paper.tex")); err != nil {
		t.Errorf("paper.tex missing after extraction: %v", err)
	}
}

func TestExtractBareGzipWritesTexFile(t *testing.T) {
	dir := t.TempDir()
	content := "\\documentclass{article}\\begin{document}hi\\end{document}"
	archive := makeBareGz(t, dir, content)
	dest := filepath.Join(dir, "work")

	format, err := Extract(archive, dest, "2103.13630")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if format != FormatGzipFile {
		t.Errorf("format = %v, want FormatGzipFile", format)
	}
	got, err := os.ReadFile(filepath.Join(dest, "2103.13630.tex"))
	if err != nil {
		t.Fatalf("expected bare gzip payload as tex file: %v", err)
	}
	if string(got) != content {
		t.Errorf("payload = %q, want %q", got, content)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download")
	if err := os.WriteFile(path, []byte("plain text, no archive magic"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Extract(path, filepath.Join(dir, "work"), "x")
	if !errors.Is(err, services.ErrUnsupportedArchive) {
		t.Fatalf("expected ErrUnsupportedArchive, got %v", err)
	}
}

func TestExtractCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download")
	// Valid gzip magic followed by garbage.
	if err := os.WriteFile(path, []byte{0x1f, 0x8b, 0xff, 0xff, 0xff, 0xff}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Extract(path, filepath.Join(dir, "work"), "x")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}
