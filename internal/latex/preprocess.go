// Package latex rewrites constructs that routinely break pandoc's LaTeX
// reader before conversion is attempted.
package latex

import (
	"fmt"
	"os"
	"regexp"

	"arxiv2epub/internal/fileutil"
)

// BackupSuffix is appended to the original file kept next to the simplified
// one.
const BackupSuffix = ".bak"

type replacement struct {
	pattern *regexp.Regexp
	with    string
}

// Citations, cross-references, and graphics inclusion depend on aux files and
// bibliography runs that never happen here; they are reduced to plain-text
// placeholders. Multi-file inclusion and bibliography commands are commented
// out for the same reason.
var replacements = []replacement{
	{regexp.MustCompile(`\\cite\{([^}]*)\}`), `[$1]`},
	{regexp.MustCompile(`\\includegraphics(\[[^\]]*\])?\{([^}]*)\}`), `[Image: $2]`},
	{regexp.MustCompile(`\\ref\{([^}]*)\}`), `[ref]`},
	{regexp.MustCompile(`\\label\{([^}]*)\}`), ``},
	{regexp.MustCompile(`\\input\{([^}]*)\}`), `% input file: $1`},
	{regexp.MustCompile(`\\include\{([^}]*)\}`), `% include file: $1`},
	{regexp.MustCompile(`\\bibliography\{([^}]*)\}`), `% bibliography: $1`},
	{regexp.MustCompile(`\\bibliographystyle\{([^}]*)\}`), ``},
}

// Simplify rewrites path in place, keeping a backup alongside it. If the
// rewrite cannot be completed the original content is restored and the error
// returned; the caller may still attempt conversion on the untouched file.
func Simplify(path string) error {
	backup := path + BackupSuffix
	if err := fileutil.CopyFile(path, backup); err != nil {
		return fmt.Errorf("back up tex file: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tex file: %w", err)
	}

	modified := string(content)
	for _, r := range replacements {
		modified = r.pattern.ReplaceAllString(modified, r.with)
	}

	if err := os.WriteFile(path, []byte(modified), 0o644); err != nil {
		if restoreErr := fileutil.CopyFile(backup, path); restoreErr != nil {
			return fmt.Errorf("write simplified tex: %w (restore failed: %v)", err, restoreErr)
		}
		return fmt.Errorf("write simplified tex: %w", err)
	}
	return nil
}
