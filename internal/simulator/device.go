package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"labsys.dev/lab-control/internal/store"
)

// DeviceIdentity is the synthetic identity of one simulated controller.
type DeviceIdentity struct {
	DeviceID   string `fake:"{uuid}"`
	Location   string `fake:"{city}, {state}"`
	MacAddress string `fake:"{macaddress}"`
	IPAddress  string `fake:"{ipv4address}"`
	Firmware   string `fake:"{appversion}"`
}

// NewDeviceIdentity fills a DeviceIdentity with fake but plausible values.
func NewDeviceIdentity() *DeviceIdentity {
	var device DeviceIdentity
	if err := gofakeit.Struct(&device); err != nil {
		return nil
	}
	return &device
}

// ReadingGenerator produces correlated sensor readings for one device. Each
// device carries its own baselines so a multi-device run does not emit
// identical streams.
type ReadingGenerator struct {
	baselineTemp     float64
	baselineHumidity float64
	noise            float64
}

// NewReadingGenerator creates a generator with randomized baselines.
func NewReadingGenerator() *ReadingGenerator {
	return &ReadingGenerator{
		baselineTemp:     20.0 + rand.Float64()*10, // 20-30°C
		baselineHumidity: 50.0 + rand.Float64()*20, // 50-70%
		noise:            rand.Float64() * 2,
	}
}

// Temperature follows a daily cycle peaking in the early afternoon.
func (g *ReadingGenerator) Temperature(t time.Time) float64 {
	hour := float64(t.Hour())

	dailyCycle := 5 * math.Sin((hour-6)*math.Pi/12)
	noise := (rand.Float64() - 0.5) * g.noise

	// Occasional anomalies (5% chance)
	anomaly := 0.0
	if rand.Float64() < 0.05 {
		anomaly = (rand.Float64() - 0.5) * 15
	}

	return g.baselineTemp + dailyCycle + noise + anomaly
}

// Humidity is inversely correlated with temperature and higher at night.
func (g *ReadingGenerator) Humidity(t time.Time, temperature float64) float64 {
	hour := float64(t.Hour())

	dailyCycle := -3 * math.Sin((hour-6)*math.Pi/12)
	tempEffect := -(temperature - g.baselineTemp) * 1.5
	noise := (rand.Float64() - 0.5) * g.noise * 0.5

	humidity := g.baselineHumidity + dailyCycle + tempEffect + noise

	// Clamp between realistic bounds (20-95%)
	return math.Max(20, math.Min(95, humidity))
}

// LightLevel models the digital LDR module on the real board: day between
// roughly 06:00 and 18:00, with a little jitter at the edges.
func (g *ReadingGenerator) LightLevel(t time.Time) int {
	hour := t.Hour()

	isDay := hour >= 6 && hour < 18
	if hour == 6 || hour == 17 {
		// Dawn and dusk flicker
		if rand.Float64() < 0.3 {
			isDay = !isDay
		}
	}

	if isDay {
		return store.LightDay
	}
	return store.LightNight
}

// FlameStatus is almost always clear; a rare reading simulates the IR flame
// sensor tripping.
func (g *ReadingGenerator) FlameStatus() int {
	if rand.Float64() < 0.005 {
		return store.FlameDetected
	}
	return store.FlameNone
}

// Reading produces one correlated reading in the API's push format.
func (g *ReadingGenerator) Reading(t time.Time) *SensorReading {
	temperature := g.Temperature(t)
	humidity := g.Humidity(t, temperature)

	return &SensorReading{
		Temperature: math.Round(temperature*100) / 100,
		Humidity:    math.Round(humidity*100) / 100,
		LightLevel:  g.LightLevel(t),
		FlameStatus: g.FlameStatus(),
	}
}
