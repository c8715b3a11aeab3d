// Package http provides the resilient transport used to talk to the PDF
// rendering service.
//
// The Client in this package handles:
//   - Bounded retries with linear back-off (1s, 2s, ...)
//   - A separate deadline for every attempt
//   - Classification of failures into failure.KindTimeout,
//     failure.KindNetwork and failure.KindService
//   - Body read progress tracking
//
// # Basic Usage
//
//	client := http.NewClient("SinergiaPDF")
//
//	resp, err := client.Send(ctx, "https://host/gerar-pdf", payload, http.Options{
//	    MaxAttempts: 3,
//	    Timeout:     30 * time.Second,
//	    OnProgress: func(read, total int64) { /* update UI */ },
//	})
//
//	// Liveness check, no retries
//	status, err := client.Ping(ctx, "https://host/health")
//
// # Attempts
//
// Every attempt is reported through Options.OnAttempt and collected in
// Response.Attempts. The outcome of an attempt is one of success, timeout,
// network-error or http-error.
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
