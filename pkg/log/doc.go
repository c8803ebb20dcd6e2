/*
Package log provides structured logging for Chronicle using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper
functions for common logging patterns. All logs include timestamps and
support filtering by severity level for production debugging.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Accessible from all Chronicle packages
  - Thread-safe concurrent writes

Log Levels:
  - Debug: Detailed debugging information
  - Info: General informational messages
  - Warn: Warning messages (potential issues)
  - Error: Error messages (operation failed)
  - Fatal: Critical errors (process exits)

Configuration:
  - Level: Filter messages below threshold
  - JSONOutput: JSON vs human-readable console
  - Output: io.Writer for log destination (stdout, file)

Context Loggers:
  - WithComponent: Add component name to all logs (ingestion, gapfiller,
    httpapi, supervisor, ...)
  - WithNodeAddr: Add the upstream node address a log line concerns
  - WithMilestone: Add the milestone index a log line concerns

# Usage

	import "github.com/iotaledger/inx-chronicle-sub002/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Info("Chronicle starting")

	ingestionLog := log.WithComponent("ingestion")
	ingestionLog.Info().
		Uint32("milestone", 1284031).
		Int("blocks", 212).
		Msg("committed milestone")

	gapLog := log.WithComponent("gapfiller").With().
		Str("node_addr", "localhost:9029").Logger()
	gapLog.Warn().Err(err).Msg("milestone fetch failed, retrying")

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance, initialized once at startup,
    accessible from all packages without passing it down explicitly.

Context Logger Pattern:
  - Create child loggers with context fields (component, node address,
    milestone index) and pass those down instead of repeating fields at
    every call site.

Structured Logging Pattern:
  - Use typed fields (.Str, .Uint32, .Err) rather than string
    concatenation, so logs stay parseable by log aggregation tooling.

# Security

Never log secrets or sensitive data (node auth tokens, JWT signing keys).
Use structured fields for user-supplied data rather than concatenating it
into the message, to avoid log injection.
*/
package log
