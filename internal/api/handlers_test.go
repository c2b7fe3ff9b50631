package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"labsys.dev/lab-control/internal/api"
	"labsys.dev/lab-control/internal/auth"
	"labsys.dev/lab-control/internal/store"
)

var apiDBCounter atomic.Int64

// envelope mirrors the uniform response shape for assertions.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	router     http.Handler
	store      *store.Store
	tokens     *auth.TokenManager
	adminToken string
	userToken  string
	adminID    uint
	userID     uint
}

func newFixture() *fixture {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	dsn := fmt.Sprintf("file:api-test-%d?mode=memory&cache=shared", apiDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	Expect(store.Migrate(db, logger)).To(Succeed())

	st, err := store.New(db, logger)
	Expect(err).NotTo(HaveOccurred())

	tokens, err := auth.NewTokenManager("handler-test-secret", time.Hour)
	Expect(err).NotTo(HaveOccurred())

	handlers, err := api.NewHandlers(logger, st, tokens, nil)
	Expect(err).NotTo(HaveOccurred())

	f := &fixture{
		router: handlers.Router(),
		store:  st,
		tokens: tokens,
	}

	ctx := context.Background()

	adminHash, err := auth.HashPassword("admin-password")
	Expect(err).NotTo(HaveOccurred())
	admin, err := st.SeedAdmin(ctx, "admin", "admin@lab.local", adminHash)
	Expect(err).NotTo(HaveOccurred())
	f.adminID = admin.ID

	userHash, err := auth.HashPassword("user-password")
	Expect(err).NotTo(HaveOccurred())
	user := &store.User{
		Username:     "alice",
		Email:        "alice@lab.local",
		PasswordHash: userHash,
		Role:         store.RoleUser,
	}
	Expect(st.CreateUser(ctx, user)).To(Succeed())
	f.userID = user.ID

	f.adminToken, err = tokens.Issue(admin.ID, admin.Role)
	Expect(err).NotTo(HaveOccurred())
	f.userToken, err = tokens.Issue(user.ID, user.Role)
	Expect(err).NotTo(HaveOccurred())

	return f
}

// do runs one request through the router and decodes the envelope.
func (f *fixture) do(method, path, token string, body any) (*httptest.ResponseRecorder, *envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
	}
	return rec, &env
}

var _ = Describe("Handlers", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture()
	})

	Describe("health", func() {
		It("should answer ok", func() {
			rec, _ := f.do(http.MethodGet, "/health", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"status":"ok"`))
		})
	})

	Describe("login", func() {
		It("should issue a token for valid credentials", func() {
			rec, env := f.do(http.MethodPost, "/auth/login", "", map[string]string{
				"email":    "admin@lab.local",
				"password": "admin-password",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Success).To(BeTrue())
			Expect(env.Message).To(Equal("Login successful"))

			var payload struct {
				User  store.User `json:"user"`
				Token string     `json:"token"`
			}
			Expect(json.Unmarshal(env.Data, &payload)).To(Succeed())
			Expect(payload.Token).NotTo(BeEmpty())
			Expect(payload.User.Role).To(Equal(store.RoleAdmin))

			userID, _, err := f.tokens.Verify(payload.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(userID).To(Equal(f.adminID))
		})

		It("should not reveal whether the email exists", func() {
			recNoUser, envNoUser := f.do(http.MethodPost, "/auth/login", "", map[string]string{
				"email":    "ghost@lab.local",
				"password": "whatever",
			})
			recBadPass, envBadPass := f.do(http.MethodPost, "/auth/login", "", map[string]string{
				"email":    "admin@lab.local",
				"password": "wrong",
			})

			Expect(recNoUser.Code).To(Equal(http.StatusUnauthorized))
			Expect(recBadPass.Code).To(Equal(http.StatusUnauthorized))
			Expect(envNoUser.Message).To(Equal(envBadPass.Message))
			Expect(envNoUser.Message).To(Equal("Invalid email or password"))
		})

		It("should require both fields", func() {
			rec, env := f.do(http.MethodPost, "/auth/login", "", map[string]string{
				"email": "admin@lab.local",
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Email and password are required"))
		})

		It("should not leak the password hash", func() {
			rec, env := f.do(http.MethodPost, "/auth/login", "", map[string]string{
				"email":    "admin@lab.local",
				"password": "admin-password",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(string(env.Data)).NotTo(ContainSubstring("passwordHash"))
			Expect(string(env.Data)).NotTo(ContainSubstring("$2a$"))
		})
	})

	Describe("register", func() {
		It("should create an account with the default role", func() {
			rec, env := f.do(http.MethodPost, "/auth/register", "", map[string]string{
				"username": "bob",
				"email":    "bob@lab.local",
				"password": "bob-password",
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(env.Message).To(Equal("User registered successfully"))

			var created store.User
			Expect(json.Unmarshal(env.Data, &created)).To(Succeed())
			Expect(created.Role).To(Equal(store.RoleUser))
		})

		It("should reject an invalid role", func() {
			rec, env := f.do(http.MethodPost, "/auth/register", "", map[string]string{
				"username": "eve",
				"email":    "eve@lab.local",
				"password": "eve-password",
				"role":     "superuser",
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Invalid role. Must be either 'admin' or 'user'"))
		})

		It("should reject a duplicate email", func() {
			rec, env := f.do(http.MethodPost, "/auth/register", "", map[string]string{
				"username": "bob",
				"email":    "alice@lab.local",
				"password": "bob-password",
			})
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(env.Message).To(Equal("Email already registered"))
		})
	})

	Describe("sensor ingestion", func() {
		validReading := func() map[string]any {
			return map[string]any{
				"temperature": 23.4,
				"humidity":    48.0,
				"lightLevel":  1,
				"flameStatus": 0,
			}
		}

		It("should accept a reading and serve it back", func() {
			rec, env := f.do(http.MethodPost, "/esp32/sensors", "", validReading())
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("Sensor data received successfully"))

			rec, env = f.do(http.MethodGet, "/esp32/sensors/current", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var current store.SensorReading
			Expect(json.Unmarshal(env.Data, &current)).To(Succeed())
			Expect(current.Temperature).To(Equal(23.4))
			Expect(current.Humidity).To(Equal(48.0))
		})

		It("should 404 before any reading arrives", func() {
			rec, env := f.do(http.MethodGet, "/esp32/sensors/current", "", nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(env.Message).To(Equal("No sensor data available"))
		})

		It("should require all four fields", func() {
			body := validReading()
			delete(body, "flameStatus")

			rec, env := f.do(http.MethodPost, "/esp32/sensors", "", body)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Temperature, humidity, lightLevel and flameStatus are required"))
		})

		It("should treat an explicit zero as present", func() {
			body := validReading()
			body["temperature"] = 0.0

			rec, _ := f.do(http.MethodPost, "/esp32/sensors", "", body)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should reject out-of-range values", func() {
			body := validReading()
			body["temperature"] = 150.0
			rec, _ := f.do(http.MethodPost, "/esp32/sensors", "", body)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			body = validReading()
			body["lightLevel"] = 2
			rec, _ = f.do(http.MethodPost, "/esp32/sensors", "", body)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should keep only the latest reading in history", func() {
			for i := 0; i < 3; i++ {
				body := validReading()
				body["temperature"] = 20.0 + float64(i)
				rec, _ := f.do(http.MethodPost, "/esp32/sensors", "", body)
				Expect(rec.Code).To(Equal(http.StatusOK))
			}

			rec, env := f.do(http.MethodGet, "/esp32/sensors/history", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var history []store.SensorReading
			Expect(json.Unmarshal(env.Data, &history)).To(Succeed())
			Expect(history).To(HaveLen(1))
			Expect(history[0].Temperature).To(Equal(22.0))
		})
	})

	Describe("device polling", func() {
		It("should serve the all-off default relay state without auth", func() {
			rec, env := f.do(http.MethodGet, "/esp32/relays", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var commands map[string]bool
			Expect(json.Unmarshal(env.Data, &commands)).To(Succeed())
			Expect(commands).To(HaveKeyWithValue("relay1", false))
			Expect(commands).To(HaveKeyWithValue("relay4", false))
		})

		It("should 404 working hours before configuration", func() {
			rec, env := f.do(http.MethodGet, "/esp32/working-hours", "", nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(env.Message).To(Equal("Working hours not configured"))
		})

		It("should serve prayer times without auth", func() {
			rec, _ := f.do(http.MethodGet, "/esp32/prayer-times", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("authentication gate", func() {
		It("should reject a missing token", func() {
			rec, env := f.do(http.MethodGet, "/management/relays", "", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(env.Message).To(Equal("Please login to access this resource"))
		})

		It("should reject a garbage token", func() {
			rec, env := f.do(http.MethodGet, "/management/relays", "garbage", nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(env.Message).To(Equal("Invalid token or session expired"))
		})

		It("should reject a token whose user was deleted", func() {
			ghost := &store.User{
				Username:     "ghost",
				Email:        "ghost@lab.local",
				PasswordHash: "hash",
				Role:         store.RoleUser,
			}
			Expect(f.store.CreateUser(context.Background(), ghost)).To(Succeed())
			token, err := f.tokens.Issue(ghost.ID, ghost.Role)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.store.DeleteUser(context.Background(), ghost.ID)).To(Succeed())

			rec, env := f.do(http.MethodGet, "/management/relays", token, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(env.Message).To(Equal("User not found or invalid token"))
		})
	})

	Describe("relay management", func() {
		It("should toggle exactly one channel", func() {
			rec, env := f.do(http.MethodPost, "/management/relays/toggle/2", f.userToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("Relay 2 toggled successfully"))

			var state store.RelayState
			Expect(json.Unmarshal(env.Data, &state)).To(Succeed())
			Expect(state.Relay1).To(BeFalse())
			Expect(state.Relay2).To(BeTrue())
			Expect(state.Relay3).To(BeFalse())
			Expect(state.Relay4).To(BeFalse())
		})

		It("should reject channel ids outside 1-4", func() {
			for _, id := range []string{"0", "5", "abc", "-1"} {
				rec, env := f.do(http.MethodPost, "/management/relays/toggle/"+id, f.userToken, nil)
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(env.Message).To(Equal("Relay ID must be between 1 and 4"))
			}
		})

		It("should replace all channels via PUT", func() {
			rec, env := f.do(http.MethodPut, "/management/relays", f.userToken, map[string]bool{
				"relay1": true, "relay2": false, "relay3": true, "relay4": true,
			})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("Relay states updated successfully"))
		})

		It("should require all four channels on PUT", func() {
			rec, env := f.do(http.MethodPut, "/management/relays", f.userToken, map[string]bool{
				"relay1": true,
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("All relay states are required"))
		})

		It("should switch everything with all-on and all-off", func() {
			rec, env := f.do(http.MethodPost, "/management/relays/all-on", f.userToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("All relays turned ON successfully"))

			var state store.RelayState
			Expect(json.Unmarshal(env.Data, &state)).To(Succeed())
			Expect(state.Relay1).To(BeTrue())
			Expect(state.Relay4).To(BeTrue())

			rec, env = f.do(http.MethodPost, "/management/relays/all-off", f.userToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("All relays turned OFF successfully"))
		})

		It("should reflect management writes in the device poll", func() {
			rec, _ := f.do(http.MethodPost, "/management/relays/toggle/1", f.adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec, env := f.do(http.MethodGet, "/esp32/relays", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var commands map[string]bool
			Expect(json.Unmarshal(env.Data, &commands)).To(Succeed())
			Expect(commands).To(HaveKeyWithValue("relay1", true))
		})
	})

	Describe("prayer time management", func() {
		window := func(name string, hour int) map[string]any {
			return map[string]any{
				"name": name, "hour": hour, "minute": 30, "duration": 20,
			}
		}

		It("should let admins create windows", func() {
			rec, env := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, window("Fajr", 5))
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(env.Message).To(Equal("Prayer time created successfully"))
		})

		It("should forbid non-admin writes but allow reads", func() {
			rec, env := f.do(http.MethodPost, "/management/prayer-times", f.userToken, window("Fajr", 5))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(env.Message).To(Equal("Access denied. Admin role required."))

			rec, _ = f.do(http.MethodGet, "/management/prayer-times", f.userToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should enforce the five-window cap", func() {
			names := []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}
			for i, name := range names {
				rec, _ := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, window(name, i+4))
				Expect(rec.Code).To(Equal(http.StatusCreated))
			}

			rec, env := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, window("Tahajjud", 2))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Cannot create more than 5 prayer times"))
		})

		It("should conflict on duplicate names", func() {
			rec, _ := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, window("Fajr", 5))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec, env := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, window("Fajr", 6))
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(env.Message).To(Equal("Prayer time with this name already exists"))
		})

		It("should validate field ranges", func() {
			body := window("Fajr", 24)
			rec, env := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, body)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Hour must be between 0 and 23"))
		})

		It("should update only the provided fields", func() {
			rec, env := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, window("Asr", 15))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created store.PrayerTime
			Expect(json.Unmarshal(env.Data, &created)).To(Succeed())

			rec, env = f.do(http.MethodPut, fmt.Sprintf("/management/prayer-times/%d", created.ID), f.adminToken, map[string]any{
				"minute": 45,
			})
			Expect(rec.Code).To(Equal(http.StatusOK))

			var updated store.PrayerTime
			Expect(json.Unmarshal(env.Data, &updated)).To(Succeed())
			Expect(updated.Name).To(Equal("Asr"))
			Expect(updated.Hour).To(Equal(15))
			Expect(updated.Minute).To(Equal(45))
		})

		It("should delete a window", func() {
			rec, env := f.do(http.MethodPost, "/management/prayer-times", f.adminToken, window("Isha", 19))
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created store.PrayerTime
			Expect(json.Unmarshal(env.Data, &created)).To(Succeed())

			rec, env = f.do(http.MethodDelete, fmt.Sprintf("/management/prayer-times/%d", created.ID), f.adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("Prayer time deleted successfully"))

			rec, env = f.do(http.MethodGet, fmt.Sprintf("/management/prayer-times/%d", created.ID), f.adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(env.Message).To(Equal("Prayer time not found"))
		})
	})

	Describe("working hours management", func() {
		validHours := func() map[string]any {
			return map[string]any{
				"startHour": 8, "startMinute": 0, "endHour": 17, "endMinute": 30,
			}
		}

		It("should upsert and read back the window", func() {
			rec, env := f.do(http.MethodPut, "/management/working-hours", f.adminToken, validHours())
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("Working hours updated successfully"))

			rec, env = f.do(http.MethodGet, "/management/working-hours", f.userToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var hours store.WorkingHours
			Expect(json.Unmarshal(env.Data, &hours)).To(Succeed())
			Expect(hours.StartHour).To(Equal(8))
			Expect(hours.EndMinute).To(Equal(30))
			Expect(hours.IsActive).To(BeTrue())
		})

		It("should forbid non-admin writes", func() {
			rec, _ := f.do(http.MethodPut, "/management/working-hours", f.userToken, validHours())
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should require all four time fields", func() {
			body := validHours()
			delete(body, "endMinute")
			rec, env := f.do(http.MethodPut, "/management/working-hours", f.adminToken, body)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Start hour, start minute, end hour and end minute are required"))
		})

		It("should serve configured hours to the device unauthenticated", func() {
			rec, _ := f.do(http.MethodPut, "/management/working-hours", f.adminToken, validHours())
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec, env := f.do(http.MethodGet, "/esp32/working-hours", "", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var hours store.WorkingHours
			Expect(json.Unmarshal(env.Data, &hours)).To(Succeed())
			Expect(hours.StartHour).To(Equal(8))
		})
	})

	Describe("user administration", func() {
		It("should forbid non-admin access", func() {
			rec, _ := f.do(http.MethodGet, "/users", f.userToken, nil)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should list users without hashes", func() {
			rec, env := f.do(http.MethodGet, "/users", f.adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var users []store.User
			Expect(json.Unmarshal(env.Data, &users)).To(Succeed())
			Expect(users).To(HaveLen(2))
			Expect(string(env.Data)).NotTo(ContainSubstring("$2a$"))
		})

		It("should block changing your own role", func() {
			rec, env := f.do(http.MethodPut, fmt.Sprintf("/users/%d", f.adminID), f.adminToken, map[string]string{
				"role": "user",
			})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Cannot change your own role"))
		})

		It("should block deleting your own account", func() {
			rec, env := f.do(http.MethodDelete, fmt.Sprintf("/users/%d", f.adminID), f.adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(env.Message).To(Equal("Cannot delete your own account"))
		})

		It("should update another user's role", func() {
			rec, env := f.do(http.MethodPut, fmt.Sprintf("/users/%d", f.userID), f.adminToken, map[string]string{
				"role": "admin",
			})
			Expect(rec.Code).To(Equal(http.StatusOK))

			var updated store.User
			Expect(json.Unmarshal(env.Data, &updated)).To(Succeed())
			Expect(updated.Role).To(Equal(store.RoleAdmin))
		})

		It("should delete another user and invalidate their token", func() {
			rec, env := f.do(http.MethodDelete, fmt.Sprintf("/users/%d", f.userID), f.adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(env.Message).To(Equal("User deleted successfully"))

			rec, _ = f.do(http.MethodGet, "/management/relays", f.userToken, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should 404 on a missing user", func() {
			rec, env := f.do(http.MethodGet, "/users/99999", f.adminToken, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(env.Message).To(Equal("User not found"))
		})
	})

	Describe("middleware", func() {
		It("should echo a provided request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("X-Request-ID", "fixed-id")
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			Expect(rec.Header().Get("X-Request-ID")).To(Equal("fixed-id"))
		})

		It("should generate a request id when absent", func() {
			rec, _ := f.do(http.MethodGet, "/health", "", nil)
			Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		})

		It("should answer preflight requests", func() {
			req := httptest.NewRequest(http.MethodOptions, "/management/relays", nil)
			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})
})
