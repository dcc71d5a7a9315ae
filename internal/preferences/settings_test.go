package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSettingsCountdownConfig(t *testing.T) {
	config := DefaultSettings().CountdownConfig()

	assert.Equal(t, time.Second, config.TickInterval)
	assert.Equal(t, 10, config.WarnThreshold)
	assert.Equal(t, "Timer Finished", config.Alert.Title)
	assert.Equal(t, "Your countdown timer has ended!", config.Alert.Body)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}, config.Alert.Vibrate)
}

func TestCountdownConfigCopiesVibratePattern(t *testing.T) {
	settings := DefaultSettings()
	config := settings.CountdownConfig()
	config.Alert.Vibrate[0] = time.Hour

	assert.Equal(t, 200*time.Millisecond, settings.Vibrate[0])
}
