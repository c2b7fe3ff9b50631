package simulator

import "time"

// PrayerWindow is the schedule entry the device polls from the API.
type PrayerWindow struct {
	Name     string `json:"name"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Duration int    `json:"duration"`
}

// WorkingHours is the device's view of the lab's operating window.
type WorkingHours struct {
	Name        string `json:"name"`
	StartHour   int    `json:"startHour"`
	StartMinute int    `json:"startMinute"`
	EndHour     int    `json:"endHour"`
	EndMinute   int    `json:"endMinute"`
	IsActive    bool   `json:"isActive"`
}

const minutesPerDay = 24 * 60

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// inWindow reports whether now falls in [start, end). A window whose end is
// not after its start wraps past midnight.
func inWindow(now, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return now >= start && now < end
	}
	return now >= start || now < end
}

// InPrayerWindow reports whether t falls inside the prayer window, including
// windows that spill past midnight.
func InPrayerWindow(t time.Time, w PrayerWindow) bool {
	start := w.Hour*60 + w.Minute
	end := (start + w.Duration) % minutesPerDay
	return inWindow(minuteOfDay(t), start, end)
}

// InAnyPrayerWindow reports whether t falls inside any of the windows.
func InAnyPrayerWindow(t time.Time, windows []PrayerWindow) bool {
	for _, w := range windows {
		if InPrayerWindow(t, w) {
			return true
		}
	}
	return false
}

// InWorkingHours reports whether t falls inside the configured hours. An
// inactive or missing configuration imposes no restriction.
func InWorkingHours(t time.Time, wh *WorkingHours) bool {
	if wh == nil || !wh.IsActive {
		return true
	}
	start := wh.StartHour*60 + wh.StartMinute
	end := wh.EndHour*60 + wh.EndMinute
	return inWindow(minuteOfDay(t), start, end)
}

// OutputsAllowed applies the firmware's gating rule: relay outputs stay off
// outside working hours and during prayer windows.
func OutputsAllowed(t time.Time, wh *WorkingHours, windows []PrayerWindow) bool {
	return InWorkingHours(t, wh) && !InAnyPrayerWindow(t, windows)
}
