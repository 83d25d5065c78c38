package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPreferenceEnablesEverything(t *testing.T) {
	pref := DefaultPreference("u1")

	assert.Equal(t, "u1", pref.UserID)
	assert.Equal(t, DigestDaily, pref.DigestFrequency)
	assert.Nil(t, pref.QuietHoursStart)
	assert.True(t, pref.AppTicketAssigned)
	assert.True(t, pref.AppSLAAlert)
	assert.True(t, pref.EmailMention)
	assert.True(t, pref.EmailDueDateReminder)
}

func TestQuietHoursActive(t *testing.T) {
	start, end := 9, 17

	pref := DefaultPreference("u1")
	assert.False(t, pref.QuietHoursActive(12), "unset window is never active")

	pref.QuietHoursStart, pref.QuietHoursEnd = &start, &end
	assert.True(t, pref.QuietHoursActive(9), "start is inclusive")
	assert.True(t, pref.QuietHoursActive(16))
	assert.False(t, pref.QuietHoursActive(17), "end is exclusive")
	assert.False(t, pref.QuietHoursActive(8))

	// A wrapping window never suppresses anything.
	wrapStart, wrapEnd := 22, 6
	pref.QuietHoursStart, pref.QuietHoursEnd = &wrapStart, &wrapEnd
	for hour := 0; hour < 24; hour++ {
		assert.False(t, pref.QuietHoursActive(hour))
	}
}
