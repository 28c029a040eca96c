package models

// SessionContext ties one staged extraction to the confirmation step that
// commits it. UID keys the staged rows; ContentURL is the evidence source.
type SessionContext struct {
	UID        string `json:"session_uid"`
	ContentURL string `json:"content_url"`
}
