package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultOutputDir           = "./output"
	defaultEPrintBaseURL       = "https://arxiv.org/e-print"
	defaultAPIBaseURL          = "https://export.arxiv.org/api/query"
	defaultRequestTimeout      = 60
	defaultUserAgent           = "arxiv2epub/1.0"
	defaultPandocBinary        = "pandoc"
	defaultPandocTimeout       = 300
	defaultMagickBinary        = "convert"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			TempDir:   defaultTempDir(),
		},
		Arxiv: Arxiv{
			EPrintBaseURL:  defaultEPrintBaseURL,
			APIBaseURL:     defaultAPIBaseURL,
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
			FetchMetadata:  true,
		},
		Pandoc: Pandoc{
			Binary:           defaultPandocBinary,
			Timeout:          defaultPandocTimeout,
			TOC:              true,
			MarkdownFallback: true,
			Preprocess:       true,
		},
		Cover: Cover{
			Enabled:      true,
			MagickBinary: defaultMagickBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultTempDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "arxiv2epub", "tmp")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "arxiv2epub")
	}
	return filepath.Join(home, ".cache", "arxiv2epub", "tmp")
}
