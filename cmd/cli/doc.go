// Package cli constructs the issuebot command-line interface, wiring the
// Cobra command hierarchy, configuration loader, and structured logging
// primitives around the add_to_project command.
package cli
