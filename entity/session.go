package entity

// SessionStatus is the evaluated messaging window of a conversation, shaped
// for the console.
type SessionStatus struct {
	Status             string `json:"status"`
	RemainingSeconds   int64  `json:"remaining_seconds"`
	NeedsTemplateFirst bool   `json:"needs_template_first"`
	CanSendFreeForm    bool   `json:"can_send_free_form"`
}
