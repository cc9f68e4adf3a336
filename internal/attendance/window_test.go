package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowContains(t *testing.T) {
	at := func(h, m, s int) time.Time {
		return time.Date(2024, 2, 12, h, m, s, 0, time.UTC)
	}

	tests := []struct {
		name   string
		window Window
		t      time.Time
		want   bool
	}{
		{"check-in opens at 07:00", CheckInWindow, at(7, 0, 0), true},
		{"check-in mid window", CheckInWindow, at(7, 30, 0), true},
		{"check-in closes at 08:00", CheckInWindow, at(8, 0, 0), true},
		{"check-in last second of 08:00", CheckInWindow, at(8, 0, 59), true},
		{"check-in 06:59", CheckInWindow, at(6, 59, 59), false},
		{"check-in 08:01", CheckInWindow, at(8, 1, 0), false},
		{"check-in 08:05", CheckInWindow, at(8, 5, 0), false},
		{"check-in afternoon", CheckInWindow, at(17, 30, 0), false},
		{"check-out opens at 17:00", CheckOutWindow, at(17, 0, 0), true},
		{"check-out closes at 18:00", CheckOutWindow, at(18, 0, 0), true},
		{"check-out 16:59", CheckOutWindow, at(16, 59, 0), false},
		{"check-out 18:01", CheckOutWindow, at(18, 1, 0), false},
		{"check-out morning", CheckOutWindow, at(7, 30, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.window.Contains(tt.t))
		})
	}
}

func TestWindowString(t *testing.T) {
	assert.Equal(t, "07:00-08:00", CheckInWindow.String())
	assert.Equal(t, "17:00-18:00", CheckOutWindow.String())
}
