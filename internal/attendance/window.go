package attendance

import (
	"fmt"
	"time"
)

// Window is an inclusive range of minutes of the day.
type Window struct {
	Start int
	End   int
}

// Default windows: check-in 07:00-08:00, check-out 17:00-18:00, both ends inclusive.
var (
	CheckInWindow  = NewWindow(7, 0, 8, 0)
	CheckOutWindow = NewWindow(17, 0, 18, 0)
)

// NewWindow builds a window from hour/minute bounds.
func NewWindow(startHour, startMin, endHour, endMin int) Window {
	return Window{Start: startHour*60 + startMin, End: endHour*60 + endMin}
}

// Contains reports whether t falls inside the window. Seconds are ignored, so
// 08:00:59 is still inside a window ending at 08:00.
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	return m >= w.Start && m <= w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}
