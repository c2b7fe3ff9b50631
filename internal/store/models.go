// Package store provides the persistence layer for the lab-control API:
// the sensor-reading singleton, the relay-state singleton, prayer-time
// windows, working hours and user accounts, all persisted through GORM.
package store

import (
	"time"
)

// Light level values reported by the ESP32's photoresistor.
const (
	LightNight = 0
	LightDay   = 1
)

// Flame status values reported by the ESP32's flame sensor.
const (
	FlameNone     = 0
	FlameDetected = 1
)

// SensorReading is the latest telemetry snapshot pushed by the device.
// The store retains at most one row: every ingestion deletes all prior
// readings before inserting the new one.
type SensorReading struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	Humidity    float64   `gorm:"not null" json:"humidity"`
	LightLevel  int       `gorm:"not null" json:"lightLevel"`
	FlameStatus int       `gorm:"not null" json:"flameStatus"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_sensor_created" json:"createdAt"`
}

// TableName specifies the table name for SensorReading model.
func (SensorReading) TableName() string {
	return "sensor_readings"
}

// relayStateID is the fixed primary key of the relay-state singleton.
// Materializing the default row at a well-known key keeps concurrent
// first reads from creating duplicates.
const relayStateID = 1

// RelayState is the desired output state of the four relay channels.
// Exactly one logical row exists; it is created lazily with all channels
// off and never deleted.
type RelayState struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Relay1      bool      `json:"relay1"`
	Relay2      bool      `json:"relay2"`
	Relay3      bool      `json:"relay3"`
	Relay4      bool      `json:"relay4"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// TableName specifies the table name for RelayState model.
func (RelayState) TableName() string {
	return "relay_states"
}

// Relay returns the state of channel n (1-based). Out-of-range channels
// read as false.
func (r *RelayState) Relay(n int) bool {
	switch n {
	case 1:
		return r.Relay1
	case 2:
		return r.Relay2
	case 3:
		return r.Relay3
	case 4:
		return r.Relay4
	}
	return false
}

// SetRelay sets the state of channel n (1-based).
func (r *RelayState) SetRelay(n int, on bool) {
	switch n {
	case 1:
		r.Relay1 = on
	case 2:
		r.Relay2 = on
	case 3:
		r.Relay3 = on
	case 4:
		r.Relay4 = on
	}
}

// MaxPrayerTimes caps the prayer-time collection size.
const MaxPrayerTimes = 5

// PrayerTime is a named daily time window the device uses to gate relay
// behavior. Names are unique; at most MaxPrayerTimes rows exist.
type PrayerTime struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Hour      int       `gorm:"not null;index:idx_prayer_start,priority:1" json:"hour"`
	Minute    int       `gorm:"not null;index:idx_prayer_start,priority:2" json:"minute"`
	Duration  int       `gorm:"not null;default:30" json:"duration"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for PrayerTime model.
func (PrayerTime) TableName() string {
	return "prayer_times"
}

// workingHoursID is the fixed primary key of the working-hours singleton.
const workingHoursID = 1

// WorkingHours is the single daily window during which the device allows
// relay changes. The server stores it; enforcement happens on the device.
type WorkingHours struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Name        string    `gorm:"not null;default:'Working Hours'" json:"name"`
	StartHour   int       `gorm:"not null" json:"startHour"`
	StartMinute int       `gorm:"not null" json:"startMinute"`
	EndHour     int       `gorm:"not null" json:"endHour"`
	EndMinute   int       `gorm:"not null" json:"endMinute"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for WorkingHours model.
func (WorkingHours) TableName() string {
	return "working_hours"
}

// Role is the closed set of portal roles.
type Role string

// Portal roles.
const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ValidRole reports whether r is a member of the closed role set.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a portal account. The password hash never leaves the store's
// JSON projection.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"not null;default:'user'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}
