// Package download orchestrates PDF generations and tracks the resulting
// downloads.
//
// # Manager
//
// The Manager coordinates one generation:
//
//  1. Check the project has what the action needs
//  2. Probe the rendering service (and ask whether to continue when offline)
//  3. Build the multipart request
//  4. Send it with retries and per-attempt timeouts
//  5. Reject responses that are not real PDFs
//  6. Save the PDF and record the result
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, download.WithProjectUpdate(func(p model.ProjectPatch) {
//	    project = project.Apply(p)
//	}))
//
//	res, err := manager.Generate(ctx, project, model.ActionInterior)
//	if err != nil {
//	    fmt.Println(failure.UserMessage(err))
//	}
//
// # Tracker
//
// Each generation owns a DownloadRecord in the Tracker. Records go from
// queued to downloading to completed or error and never come back from a
// terminal state. Finished records disappear from the visible list a few
// seconds after the last one finished, unless something is still
// downloading; the last ten stay in History.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message  string
//	    Level    ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Kind     EventKind     // progress, validation-rejected, offline-warning, ...
//	    Action   model.ActionKind
//	    RecordID uint64
//	    Progress int
//	}
//
// # Retry Logic
//
// Failed attempts are retried with a linear back-off, configurable via
// settings.MaxAttempts and settings.RetryBackoffUnit. Responses that are
// not PDFs are never retried.
package download
