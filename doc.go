// Package trafficlog provides a concurrency-safe logging service over
// rs/zerolog and an HTTP traffic logger built on it.
//
// Key features
//   - Structured logging: prefer typed fields over printf-style helpers
//   - Context loggers via With() for per-request scoping
//   - Graceful shutdown that waits for in-flight logs (bounded timeout)
//   - File rotation via lumberjack and configurable console formatting
//   - Traffic logging middleware: a DEBUG summary line per request and per
//     response, and at TRACE a syntax-highlighted rendering of method, URL,
//     headers, status and body. Response bodies are captured without
//     altering what is sent to the client.
//
// Typical usage
//
//	cfg, err := trafficlog.LoadConfig("logging.yaml")
//	if err != nil { panic(err) }
//	svc := trafficlog.NewLogger(&cfg)
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	handler := trafficlog.TrafficLogger(svc)(mux)
//
// Bodies are rendered only when the declared Content-Length is under the
// body limit (100000 bytes by default). A missing or malformed length is
// treated as exceeding it.
package trafficlog
