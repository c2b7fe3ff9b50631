package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors returned by store operations. The HTTP layer maps these
// to the response taxonomy; anything else is an internal failure.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateName   = errors.New("name already exists")
	ErrPrayerTimeLimit = fmt.Errorf("cannot create more than %d prayer times", MaxPrayerTimes)
	ErrEmailTaken      = errors.New("email already registered")
	ErrUsernameTaken   = errors.New("username already taken")
)

// Store wraps a GORM database handle with the lab-control persistence
// operations.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// New creates a new Store instance.
func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Store{db: db, logger: logger}, nil
}

// DB exposes the underlying handle for lifecycle management.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ReplaceSensorReading performs the destructive replace of the sensor
// singleton: all prior readings are deleted and the new one inserted in a
// single transaction, so the store never holds more than one reading.
func (s *Store) ReplaceSensorReading(ctx context.Context, reading *SensorReading) error {
	if reading == nil {
		return errors.New("reading cannot be nil")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&SensorReading{}).Error; err != nil {
			return err
		}
		return tx.Create(reading).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace sensor reading: %w", err)
	}

	s.logger.Debug("sensor reading replaced",
		"temperature", reading.Temperature,
		"humidity", reading.Humidity,
		"light_level", reading.LightLevel,
		"flame_status", reading.FlameStatus,
	)
	return nil
}

// CurrentSensorReading returns the most recent reading by creation order,
// or ErrNotFound when nothing has been ingested yet.
func (s *Store) CurrentSensorReading(ctx context.Context) (*SensorReading, error) {
	var reading SensorReading
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&reading).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch sensor reading: %w", err)
	}
	return &reading, nil
}

// SensorHistory returns up to limit readings, newest first. Under the
// replace-only ingestion semantic this is at most one row in steady state;
// the endpoint is kept for device and portal compatibility.
func (s *Store) SensorHistory(ctx context.Context, limit int) ([]SensorReading, error) {
	if limit <= 0 {
		limit = 10
	}

	var readings []SensorReading
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sensor history: %w", err)
	}
	return readings, nil
}

// ensureRelayState materializes the all-off default row at the fixed key.
// ON CONFLICT DO NOTHING makes concurrent first reads converge on a single
// row instead of racing to create duplicates.
func (s *Store) ensureRelayState(ctx context.Context) error {
	seed := RelayState{ID: relayStateID, LastUpdated: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return fmt.Errorf("failed to materialize relay state: %w", err)
	}
	return nil
}

// RelayState returns the relay singleton, creating the all-off default on
// first access. Repeated reads with no mutation in between return identical
// state and never add rows.
func (s *Store) RelayState(ctx context.Context) (*RelayState, error) {
	if err := s.ensureRelayState(ctx); err != nil {
		return nil, err
	}

	var state RelayState
	if err := s.db.WithContext(ctx).First(&state, relayStateID).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch relay state: %w", err)
	}
	return &state, nil
}

// UpdateRelayState replaces all four channels at once, upserting the
// singleton row.
func (s *Store) UpdateRelayState(ctx context.Context, relay1, relay2, relay3, relay4 bool) (*RelayState, error) {
	state := RelayState{
		ID:          relayStateID,
		Relay1:      relay1,
		Relay2:      relay2,
		Relay3:      relay3,
		Relay4:      relay4,
		LastUpdated: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&state).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update relay state: %w", err)
	}

	s.logger.Debug("relay state replaced",
		"relay1", relay1, "relay2", relay2, "relay3", relay3, "relay4", relay4)
	return &state, nil
}

// ToggleRelay flips the addressed channel (1-4), refreshes LastUpdated and
// returns the full updated state. The read-modify-write is not serialized:
// two concurrent toggles of the same channel are last-write-wins.
func (s *Store) ToggleRelay(ctx context.Context, relay int) (*RelayState, error) {
	state, err := s.RelayState(ctx)
	if err != nil {
		return nil, err
	}

	state.SetRelay(relay, !state.Relay(relay))
	state.LastUpdated = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(state).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle relay %d: %w", relay, err)
	}

	s.logger.Debug("relay toggled", "relay", relay, "on", state.Relay(relay))
	return state, nil
}

// SetAllRelays sets all four channels to the same state.
func (s *Store) SetAllRelays(ctx context.Context, on bool) (*RelayState, error) {
	return s.UpdateRelayState(ctx, on, on, on, on)
}

// PrayerTimes returns all prayer-time windows ordered by (hour, minute)
// ascending, the order the device walks them in.
func (s *Store) PrayerTimes(ctx context.Context) ([]PrayerTime, error) {
	var prayerTimes []PrayerTime
	err := s.db.WithContext(ctx).Order("hour ASC, minute ASC").Find(&prayerTimes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prayer times: %w", err)
	}
	return prayerTimes, nil
}

// PrayerTimeByID returns a single prayer-time window or ErrNotFound.
func (s *Store) PrayerTimeByID(ctx context.Context, id uint) (*PrayerTime, error) {
	var prayerTime PrayerTime
	err := s.db.WithContext(ctx).First(&prayerTime, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch prayer time: %w", err)
	}
	return &prayerTime, nil
}

// CreatePrayerTime inserts a new window, enforcing the collection cap and
// name uniqueness. The check-then-create is not atomic; the unique index on
// name backstops the race.
func (s *Store) CreatePrayerTime(ctx context.Context, prayerTime *PrayerTime) error {
	if prayerTime == nil {
		return errors.New("prayer time cannot be nil")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&PrayerTime{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count prayer times: %w", err)
	}
	if count >= MaxPrayerTimes {
		return ErrPrayerTimeLimit
	}

	var existing PrayerTime
	err := s.db.WithContext(ctx).Where("name = ?", prayerTime.Name).First(&existing).Error
	if err == nil {
		return ErrDuplicateName
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check prayer time name: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(prayerTime).Error; err != nil {
		return fmt.Errorf("failed to create prayer time: %w", err)
	}

	s.logger.Debug("prayer time created", "name", prayerTime.Name,
		"hour", prayerTime.Hour, "minute", prayerTime.Minute)
	return nil
}

// UpdatePrayerTime persists changes to an existing window, re-checking name
// uniqueness against all other rows.
func (s *Store) UpdatePrayerTime(ctx context.Context, prayerTime *PrayerTime) error {
	if prayerTime == nil {
		return errors.New("prayer time cannot be nil")
	}

	var existing PrayerTime
	err := s.db.WithContext(ctx).
		Where("name = ? AND id <> ?", prayerTime.Name, prayerTime.ID).
		First(&existing).Error
	if err == nil {
		return ErrDuplicateName
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check prayer time name: %w", err)
	}

	if err := s.db.WithContext(ctx).Save(prayerTime).Error; err != nil {
		return fmt.Errorf("failed to update prayer time: %w", err)
	}
	return nil
}

// DeletePrayerTime removes a window by id, ErrNotFound if absent.
func (s *Store) DeletePrayerTime(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&PrayerTime{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete prayer time: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// WorkingHours returns the working-hours singleton, or ErrNotFound when it
// has never been configured.
func (s *Store) WorkingHours(ctx context.Context) (*WorkingHours, error) {
	var hours WorkingHours
	err := s.db.WithContext(ctx).First(&hours, workingHoursID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch working hours: %w", err)
	}
	return &hours, nil
}

// UpsertWorkingHours writes the working-hours singleton at its fixed key.
func (s *Store) UpsertWorkingHours(ctx context.Context, hours *WorkingHours) error {
	if hours == nil {
		return errors.New("working hours cannot be nil")
	}

	hours.ID = workingHoursID
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(hours).Error
	if err != nil {
		return fmt.Errorf("failed to upsert working hours: %w", err)
	}

	s.logger.Debug("working hours upserted",
		"start", fmt.Sprintf("%02d:%02d", hours.StartHour, hours.StartMinute),
		"end", fmt.Sprintf("%02d:%02d", hours.EndHour, hours.EndMinute),
		"active", hours.IsActive,
	)
	return nil
}

// Users returns all accounts, newest first.
func (s *Store) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// UserByID returns a single account or ErrNotFound.
func (s *Store) UserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// UserByEmail returns the account with the given email or ErrNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new account after checking email and username
// uniqueness.
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	if err := s.checkUserUniqueness(ctx, user.Email, user.Username, 0); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Debug("user created", "username", user.Username, "role", user.Role)
	return nil
}

// UpdateUser persists changes to an existing account, re-checking email and
// username uniqueness against all other rows.
func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	if err := s.checkUserUniqueness(ctx, user.Email, user.Username, user.ID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser removes an account by id, ErrNotFound if absent.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) checkUserUniqueness(ctx context.Context, email, username string, excludeID uint) error {
	var existing User

	err := s.db.WithContext(ctx).
		Where("email = ? AND id <> ?", email, excludeID).
		First(&existing).Error
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	err = s.db.WithContext(ctx).
		Where("username = ? AND id <> ?", username, excludeID).
		First(&existing).Error
	if err == nil {
		return ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check username uniqueness: %w", err)
	}

	return nil
}

// SeedAdmin creates the initial admin account if no admin exists yet. The
// check runs once at startup; it is not an ongoing invariant.
func (s *Store) SeedAdmin(ctx context.Context, username, email, passwordHash string) (*User, error) {
	var existing User
	err := s.db.WithContext(ctx).Where("role = ?", RoleAdmin).First(&existing).Error
	if err == nil {
		s.logger.Info("admin account already exists, skipping seed", "username", existing.Username)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for admin account: %w", err)
	}

	admin := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
	}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	s.logger.Info("default admin account created", "username", username, "email", email)
	return admin, nil
}
