// Package logging provides opt-in file-based logging with rotation for
// librovore. When the --debug flag is set, comprehensive logs are written
// to ~/.librovore/logs/ for debugging and troubleshooting.
//
// Log records are tagged with a component attribute (fetch, detect, query,
// mcp, cli) so a single log file can be filtered down to one subsystem
// without running separate loggers per package.
//
// By default (without --debug), logging is minimal and goes to stderr only.
package logging
