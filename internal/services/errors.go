package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classify every failure the pipeline can surface. Each
// category maps to a stable process exit code via ExitCode.
var (
	ErrInvalidIdentifier  = errors.New("invalid arxiv identifier")
	ErrNetwork            = errors.New("network error")
	ErrFetch              = errors.New("fetch error")
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	ErrExtraction         = errors.New("extraction error")
	ErrNoTexFile          = errors.New("no tex file found")
	ErrConversion         = errors.New("conversion error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrConversion
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ExitCode maps an error to the process exit code the CLI should terminate
// with. Success is 0; unclassified failures report 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidIdentifier):
		return 2
	case errors.Is(err, ErrNetwork):
		return 3
	case errors.Is(err, ErrFetch):
		return 4
	case errors.Is(err, ErrUnsupportedArchive):
		return 5
	case errors.Is(err, ErrExtraction):
		return 6
	case errors.Is(err, ErrNoTexFile):
		return 7
	case errors.Is(err, ErrConversion):
		return 8
	default:
		return 1
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
