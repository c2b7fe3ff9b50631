package simulator_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"labsys.dev/lab-control/internal/simulator"
	"labsys.dev/lab-control/internal/store"
)

var _ = Describe("ReadingGenerator", func() {
	var gen *simulator.ReadingGenerator

	BeforeEach(func() {
		gen = simulator.NewReadingGenerator()
	})

	It("should produce readings the ingest endpoint accepts", func() {
		for hour := 0; hour < 24; hour++ {
			t := time.Date(2026, 8, 28, hour, 0, 0, 0, time.UTC)
			reading := gen.Reading(t)

			Expect(reading.Temperature).To(BeNumerically(">=", -50))
			Expect(reading.Temperature).To(BeNumerically("<=", 100))
			Expect(reading.Humidity).To(BeNumerically(">=", 0))
			Expect(reading.Humidity).To(BeNumerically("<=", 100))
			Expect(reading.LightLevel).To(Or(Equal(store.LightNight), Equal(store.LightDay)))
			Expect(reading.FlameStatus).To(Or(Equal(store.FlameNone), Equal(store.FlameDetected)))
		}
	})

	It("should report night at midnight and day at noon", func() {
		Expect(gen.LightLevel(time.Date(2026, 8, 28, 0, 30, 0, 0, time.UTC))).To(Equal(store.LightNight))
		Expect(gen.LightLevel(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))).To(Equal(store.LightDay))
	})

	It("should rarely detect flame", func() {
		detections := 0
		for i := 0; i < 1000; i++ {
			if gen.FlameStatus() == store.FlameDetected {
				detections++
			}
		}
		Expect(detections).To(BeNumerically("<", 50))
	})
})

var _ = Describe("NewDeviceIdentity", func() {
	It("should fill every identity field", func() {
		identity := simulator.NewDeviceIdentity()
		Expect(identity).NotTo(BeNil())
		Expect(identity.DeviceID).NotTo(BeEmpty())
		Expect(identity.Location).NotTo(BeEmpty())
		Expect(identity.MacAddress).NotTo(BeEmpty())
		Expect(identity.Firmware).NotTo(BeEmpty())
	})
})

var _ = Describe("NewServer", func() {
	It("should validate its configuration", func() {
		_, err := simulator.NewServer(&simulator.ServerConfig{})
		Expect(err).To(HaveOccurred())

		_, err = simulator.NewServer(&simulator.ServerConfig{DeviceCount: 1})
		Expect(err).To(HaveOccurred())

		_, err = simulator.NewServer(&simulator.ServerConfig{DeviceCount: 1, Interval: time.Second})
		Expect(err).To(HaveOccurred())
	})
})
