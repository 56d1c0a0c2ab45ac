// Package pandoc wraps the pandoc command-line converter.
//
// Pandoc's flag contract is treated as a fixed external interface: the
// client only assembles arguments and classifies failures, it never parses
// or rewrites documents itself.
package pandoc
