package model

import "time"

// DownloadStatus is the lifecycle state of a DownloadRecord.
type DownloadStatus string

const (
	DownloadQueued      DownloadStatus = "queued"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadError       DownloadStatus = "error"
)

// Terminal reports whether no further transition can happen from s.
func (s DownloadStatus) Terminal() bool {
	return s == DownloadCompleted || s == DownloadError
}

// Label returns the status text shown next to a download.
func (s DownloadStatus) Label() string {
	switch s {
	case DownloadDownloading:
		return "Baixando..."
	case DownloadCompleted:
		return "Concluído"
	case DownloadError:
		return "Erro"
	default:
		return "Aguardando"
	}
}

// DownloadRecord tracks one requested artifact.
//
// Records are values: the Tracker hands out copies, so holding a record
// never races with later transitions.
type DownloadRecord struct {
	// ID is unique and increases with every submission.
	ID uint64

	// Filename is the requested artifact name (the project's filename stem).
	Filename string

	// Action is the generation operation this record belongs to.
	Action ActionKind

	// Status is the lifecycle state.
	Status DownloadStatus

	// Progress is a percentage in [0, 100], non-decreasing while downloading.
	Progress int

	// CreatedAt is the submission time.
	CreatedAt time.Time

	// CompletedAt is set when the record reaches a terminal state.
	CompletedAt time.Time

	// Size is the final artifact size in bytes, set on completion.
	Size int64

	// Error holds the failure text for records in DownloadError.
	Error string
}

// DisplayName returns "<filename>_<action>.pdf", the name shown in the
// downloads panel.
func (r DownloadRecord) DisplayName() string {
	return r.Filename + "_" + string(r.Action) + ".pdf"
}
