package session

import "time"

// Provider rule: a business may send free-form replies for 24 hours after
// the last customer-originated message.
const (
	WindowDuration    = 24 * time.Hour
	ExpiringThreshold = 4 * time.Hour
)

// Window statuses.
type Status string

const (
	StatusActive   Status = "active"
	StatusExpiring Status = "expiring"
	StatusExpired  Status = "expired"
)

// Window is the evaluated state of a conversation's messaging session.
type Window struct {
	Status    Status
	Remaining time.Duration

	// NeedsTemplateFirst is true while the window is open but no approved
	// template has been sent since the customer's last message. Advisory
	// only; free-form sending is gated on Status alone.
	NeedsTemplateFirst bool
}

// Evaluate computes the session window from the last customer message time
// and whether a template was sent since then. Pure given now; callers must
// re-evaluate on every use rather than cache the result.
func Evaluate(lastInboundAt *time.Time, templateSentSince bool, now time.Time) Window {
	if lastInboundAt == nil {
		return Window{Status: StatusExpired}
	}

	elapsed := now.Sub(*lastInboundAt)
	if elapsed >= WindowDuration {
		return Window{Status: StatusExpired}
	}

	w := Window{
		Remaining:          WindowDuration - elapsed,
		NeedsTemplateFirst: !templateSentSince,
	}
	if w.Remaining <= ExpiringThreshold {
		w.Status = StatusExpiring
	} else {
		w.Status = StatusActive
	}
	return w
}

// CanSendFreeForm reports whether non-template messages may be sent.
// Blocked only on an expired window.
func (w Window) CanSendFreeForm() bool {
	return w.Status != StatusExpired
}
