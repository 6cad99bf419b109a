// Package logging builds the service's *slog.Logger.
//
// Loggers are plain log/slog loggers. New wraps the JSON or text handler so
// that:
//   - string attributes are passed through a Redactor, masking bearer
//     tokens, API keys and any configured patterns
//   - attributes under sensitive keys (key, token, authorization, ...) are
//     masked outright
//   - records logged with a context carrying a request id (see
//     WithRequestID) get a request_id attribute
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//		return err
//	}
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "completion dispatched", "backend", "mancer")
package logging
