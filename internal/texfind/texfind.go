// Package texfind locates the root TeX document among extracted e-print
// sources.
//
// The selection heuristic, in order: a single candidate wins outright;
// conventional root names win next; then candidates carrying a document
// preamble are preferred over style files and included fragments; ties are
// broken by byte size, largest first.
package texfind

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"arxiv2epub/internal/services"
)

// Candidate is a .tex file found in the working directory.
type Candidate struct {
	Path string
	Size int64
}

// Conventional root document names, checked in order.
var conventionalNames = []string{
	"main.tex",
	"paper.tex",
	"manuscript.tex",
	"article.tex",
	"arxiv.tex",
}

// List walks root and returns every .tex file beneath it.
func List(root string) ([]Candidate, error) {
	var candidates []Candidate
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".tex") {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		candidates = append(candidates, Candidate{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// Select picks the most likely root document beneath root. stem is the
// identifier-derived file name (without extension) that single-file
// submissions are extracted to; it participates in the name preference.
func Select(root, stem string) (string, error) {
	candidates, err := List(root)
	if err != nil {
		return "", services.Wrap(services.ErrNoTexFile, "select", "scan working directory", root, err)
	}
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrNoTexFile, "select", "scan working directory",
			"no .tex files in extracted source", nil)
	}
	if len(candidates) == 1 {
		return candidates[0].Path, nil
	}

	preferred := conventionalNames
	if stem != "" {
		preferred = append([]string{stem + ".tex"}, conventionalNames...)
	}
	for _, name := range preferred {
		for _, candidate := range candidates {
			if strings.EqualFold(filepath.Base(candidate.Path), name) {
				return candidate.Path, nil
			}
		}
	}

	if rooted := withDocumentPreamble(candidates); len(rooted) > 0 {
		candidates = rooted
	}
	return largest(candidates).Path, nil
}

// SelectNamed returns the candidate whose base name equals name, for the
// explicit override path. The match is case-sensitive: the caller named a
// specific file.
func SelectNamed(root, name string) (string, error) {
	candidates, err := List(root)
	if err != nil {
		return "", services.Wrap(services.ErrNoTexFile, "select", "scan working directory", root, err)
	}
	for _, candidate := range candidates {
		if filepath.Base(candidate.Path) == name {
			return candidate.Path, nil
		}
	}
	return "", services.Wrap(services.ErrNoTexFile, "select", "named file", name+" not present in extracted source", nil)
}

// withDocumentPreamble filters to candidates that look like complete
// documents rather than included fragments. Only the head of each file is
// inspected; preambles sit at the top.
func withDocumentPreamble(candidates []Candidate) []Candidate {
	var rooted []Candidate
	for _, candidate := range candidates {
		head, err := readHead(candidate.Path, 64*1024)
		if err != nil {
			continue
		}
		if strings.Contains(head, `\documentclass`) || strings.Contains(head, `\begin{document}`) {
			rooted = append(rooted, candidate)
		}
	}
	return rooted
}

func readHead(path string, limit int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := make([]byte, limit)
	n, err := file.Read(buf)
	if n == 0 && err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

func largest(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Size > best.Size {
			best = candidate
		}
	}
	return best
}
