package domain

import "time"

// NoticeLevel is the severity of a user-visible notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// NoticeCode is a machine-readable notice category.
type NoticeCode string

const (
	NoticeDraftRestored    NoticeCode = "draft_restored"
	NoticeFetchFailed      NoticeCode = "fetch_failed"
	NoticeReferenceFailed  NoticeCode = "reference_failed"
	NoticeAutosaveFailed   NoticeCode = "autosave_failed"
	NoticeProposalFallback NoticeCode = "proposal_fallback"
	NoticeImportRejected   NoticeCode = "import_rejected"
	NoticeSaveFailed       NoticeCode = "save_failed"
	NoticeSaved            NoticeCode = "saved"
	NoticePublished        NoticeCode = "published"
)

// Notice is a dismissible message raised by the engine.
// Notices never block editing.
type Notice struct {
	ID        string      `json:"id"`
	Level     NoticeLevel `json:"level"`
	Code      NoticeCode  `json:"code"`
	Message   string      `json:"message"`
	CanvasID  string      `json:"canvasId,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
