// Package services holds the error taxonomy shared by the pipeline stages and
// the external tool clients in its subpackages.
//
// Every stage failure is tagged with one of the sentinel errors defined here
// so the CLI can derive a stable exit code without inspecting messages.
package services
