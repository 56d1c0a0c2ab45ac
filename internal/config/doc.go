// Package config loads, validates, and normalizes the arxiv2epub
// configuration file.
//
// Configuration is TOML with a small set of sections: [paths] for output and
// scratch directories, [arxiv] for download endpoints and timeouts, [pandoc]
// and [cover] for the external tools, and [logging] for log output. All path
// fields are tilde-expanded and made absolute during Load.
package config
