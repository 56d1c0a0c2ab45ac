// Package extract detects the format of a downloaded e-print archive and
// unpacks it into a working directory.
//
// arXiv serves sources as gzipped tarballs, occasionally as zip files, and
// for single-file submissions as a bare gzipped TeX file. Format detection
// inspects content, never the file name: downloads from the e-print endpoint
// carry no meaningful extension.
package extract

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/mholt/archiver/v3"

	"arxiv2epub/internal/services"
)

// Format identifies the archive layout of an e-print download.
type Format int

const (
	FormatUnknown Format = iota
	FormatTarGz
	FormatTar
	FormatZip
	// FormatGzipFile is a gzip stream whose payload is not a tarball. arXiv
	// uses this for submissions consisting of a single TeX file.
	FormatGzipFile
)

func (f Format) String() string {
	switch f {
	case FormatTarGz:
		return "tar.gz"
	case FormatTar:
		return "tar"
	case FormatZip:
		return "zip"
	case FormatGzipFile:
		return "gz"
	default:
		return "unknown"
	}
}

const ustarOffset = 257

// Detect inspects magic bytes to classify the archive. Gzip streams are
// peeked one level deep to distinguish a gzipped tarball from a bare gzipped
// file.
func Detect(path string) (Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer file.Close()

	header := make([]byte, ustarOffset+8)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, err
	}
	header = header[:n]

	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return FormatUnknown, err
		}
		return detectGzipPayload(file)
	case len(header) >= 4 && header[0] == 'P' && header[1] == 'K' && header[2] == 0x03 && header[3] == 0x04:
		return FormatZip, nil
	case isTarHeader(header):
		return FormatTar, nil
	default:
		return FormatUnknown, nil
	}
}

func detectGzipPayload(r io.Reader) (Format, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		// Magic matched but the stream is broken; report as gzip so the
		// extraction step surfaces a corruption error rather than an
		// unsupported-format one.
		return FormatGzipFile, nil
	}
	defer gz.Close()

	inner := make([]byte, ustarOffset+8)
	n, err := io.ReadFull(gz, inner)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatGzipFile, nil
	}
	if isTarHeader(inner[:n]) {
		return FormatTarGz, nil
	}
	return FormatGzipFile, nil
}

func isTarHeader(header []byte) bool {
	if len(header) < ustarOffset+5 {
		return false
	}
	return string(header[ustarOffset:ustarOffset+5]) == "ustar"
}

// Extract unpacks archivePath into destDir. bareStem names the output file
// (without extension) when the archive is a bare gzipped TeX file.
func Extract(archivePath, destDir, bareStem string) (Format, error) {
	format, err := Detect(archivePath)
	if err != nil {
		return FormatUnknown, services.Wrap(services.ErrExtraction, "extract", "detect format", archivePath, err)
	}
	if format == FormatUnknown {
		return FormatUnknown, services.Wrap(services.ErrUnsupportedArchive, "extract", "detect format",
			"expected a tar, tar.gz, gzip, or zip archive", nil)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return format, services.Wrap(services.ErrExtraction, "extract", "create destination", destDir, err)
	}

	switch format {
	case FormatTarGz:
		tgz := archiver.NewTarGz()
		tgz.Tar.OverwriteExisting = true
		err = tgz.Unarchive(archivePath, destDir)
	case FormatTar:
		tr := archiver.NewTar()
		tr.OverwriteExisting = true
		err = tr.Unarchive(archivePath, destDir)
	case FormatZip:
		z := archiver.NewZip()
		z.OverwriteExisting = true
		err = z.Unarchive(archivePath, destDir)
	case FormatGzipFile:
		err = decompressSingle(archivePath, filepath.Join(destDir, bareStem+".tex"))
	}
	if err != nil {
		return format, services.Wrap(services.ErrExtraction, "extract", "unpack "+format.String(), archivePath, err)
	}
	return format, nil
}

func decompressSingle(archivePath, destPath string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := archiver.NewGz()
	if err := gz.Decompress(in, out); err != nil {
		return err
	}
	return out.Close()
}
