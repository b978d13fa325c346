package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 16, 30, 0, 0, time.UTC)

	tests := []struct {
		tf         Timeframe
		start, end time.Time
	}{
		{TimeframeToday, date(2024, 5, 15), date(2024, 5, 16)},
		{TimeframeThisWeek, date(2024, 5, 13), date(2024, 5, 16)},
		{TimeframeThisMonth, date(2024, 5, 1), date(2024, 5, 16)},
		{TimeframeLastMonth, date(2024, 4, 1), date(2024, 5, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			start, end := DateRange(tt.tf, now)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestDateRange_SundayBelongsToPreviousWeek(t *testing.T) {
	start, _ := DateRange(TimeframeThisWeek, time.Date(2024, 5, 19, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, date(2024, 5, 13), start)
}

func TestParseCustomRange(t *testing.T) {
	start, end, err := ParseCustomRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 1), start)
	assert.Equal(t, date(2024, 2, 1), end)

	_, _, err = ParseCustomRange("2024-02-01", "2024-01-31")
	assert.ErrorContains(t, err, "before start")

	_, _, err = ParseCustomRange("01/01/2024", "2024-01-31")
	assert.ErrorContains(t, err, "invalid start date")
}

func TestTimeframePicker_SelectEmitsRange(t *testing.T) {
	p := NewTimeframePicker(TimeframeToday)
	p.now = func() time.Time { return time.Date(2024, 5, 15, 16, 30, 0, 0, time.UTC) }

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.Equal(t, date(2024, 5, 13), msg.Start)
	assert.True(t, p.IsSelecting())
}
