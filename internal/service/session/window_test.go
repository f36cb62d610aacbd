package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_NoInboundEver(t *testing.T) {
	w := Evaluate(nil, false, time.Now())

	assert.Equal(t, StatusExpired, w.Status)
	assert.False(t, w.CanSendFreeForm())
	assert.False(t, w.NeedsTemplateFirst)
}

func TestEvaluate_Boundaries(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		status  Status
	}{
		{"1h ago is active", time.Hour, StatusActive},
		{"19h59m ago is active", 20*time.Hour - time.Minute, StatusActive},
		{"20h ago is expiring", 20 * time.Hour, StatusExpiring},
		{"23h ago is expiring", 23 * time.Hour, StatusExpiring},
		{"exactly 24h ago is expired", 24 * time.Hour, StatusExpired},
		{"25h ago is expired", 25 * time.Hour, StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := now.Add(-tt.elapsed)
			w := Evaluate(&last, false, now)
			assert.Equal(t, tt.status, w.Status)
		})
	}
}

func TestEvaluate_Remaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-time.Hour)

	w := Evaluate(&last, false, now)

	assert.Equal(t, 23*time.Hour, w.Remaining)
}

// Free-form sending is blocked if and only if the window is expired.
// NeedsTemplateFirst never blocks a send on its own; the product treats it
// as a UI hint, and tests pin that behavior down on purpose.
func TestCanSendFreeForm_IgnoresNeedsTemplateFirst(t *testing.T) {
	now := time.Now()
	last := now.Add(-time.Hour)

	w := Evaluate(&last, false, now)

	assert.True(t, w.NeedsTemplateFirst)
	assert.True(t, w.CanSendFreeForm())
}

func TestEvaluate_TemplateClearsNeedsTemplateFirst(t *testing.T) {
	now := time.Now()
	last := now.Add(-2 * time.Hour)

	w := Evaluate(&last, true, now)

	assert.Equal(t, StatusActive, w.Status)
	assert.False(t, w.NeedsTemplateFirst)
}

func TestEvaluate_ExpiredWindowBlocksFreeForm(t *testing.T) {
	now := time.Now()
	last := now.Add(-30 * time.Hour)

	w := Evaluate(&last, true, now)

	assert.Equal(t, StatusExpired, w.Status)
	assert.False(t, w.CanSendFreeForm())
}
