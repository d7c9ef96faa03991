// CPU/GPU temperature collector: reports the hottest reading per device class.
// Uses gopsutil host sensors, falling back to the platform probe for GPUs.
package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/Guliveer/vitalis/analyst/internal/platform"
)

// Sensor name substrings that identify CPU sensors.
// Linux:  coretemp_core_0_input, k10temp_tctl_input, acpitz_temp1_input
// macOS:  TC0P, TC0D, TCXC
var cpuSensorKeys = []string{
	"cpu", "core", "package",
	"tctl", "tdie", "k10temp", "coretemp",
	"tc0p", "tc0d", "tcxc",
	"acpitz", "zenpower",
}

// Sensor name substrings that identify GPU sensors.
var gpuSensorKeys = []string{
	"gpu", "nvidia", "amdgpu", "radeon", "nouveau",
	"tg0p", "tg0d",
}

// Readings outside (minValidTemp, maxValidTemp] °C are treated as sensor errors.
const (
	minValidTemp = 0.0
	maxValidTemp = 150.0
)

// TemperatureResult holds the hottest readings in °C. Nil means no sensor.
type TemperatureResult struct {
	CPU     *float64 `json:"cpu_celsius" yaml:"cpu_celsius"`
	GPU     *float64 `json:"gpu_celsius" yaml:"gpu_celsius"`
	Sensors int      `json:"sensors" yaml:"sensors"`
}

// TemperatureCollector collects CPU and GPU temperatures.
type TemperatureCollector struct {
	platform platform.Platform
	logger   *zap.Logger
	read     func(ctx context.Context) ([]host.TemperatureStat, error)
}

// NewTemperatureCollector creates a new temperature collector. p may be nil
// when no GPU fallback is wanted.
func NewTemperatureCollector(p platform.Platform, logger *zap.Logger) *TemperatureCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemperatureCollector{
		platform: p,
		logger:   logger,
		read:     host.SensorsTemperaturesWithContext,
	}
}

// Name returns the category name.
func (c *TemperatureCollector) Name() string { return "temperature" }

// Collect finds the hottest CPU and GPU sensors. The category fails only when
// the sensors cannot be read at all and the platform fallback has nothing.
func (c *TemperatureCollector) Collect(ctx context.Context) (any, error) {
	temps, sensorErr := c.read(ctx)
	if sensorErr != nil {
		// gopsutil reports partial reads as warnings alongside data.
		c.logger.Debug("Temperature sensors reported an error", zap.Error(sensorErr))
	}

	result := TemperatureResult{}
	for _, t := range temps {
		if !isValidTemperature(t.Temperature) {
			continue
		}
		result.Sensors++

		name := strings.ToLower(t.SensorKey)
		if matchesSensor(name, cpuSensorKeys) {
			result.CPU = hottest(result.CPU, t.Temperature)
		}
		if matchesSensor(name, gpuSensorKeys) {
			result.GPU = hottest(result.GPU, t.Temperature)
		}
	}

	if result.GPU == nil {
		result.GPU = c.platformGPU(ctx)
	}

	if sensorErr != nil && result.Sensors == 0 && result.GPU == nil {
		return nil, fmt.Errorf("read sensors: %w", sensorErr)
	}
	return result, nil
}

// IsAvailable returns true; hosts without sensors report nil readings.
func (c *TemperatureCollector) IsAvailable() bool { return true }

func (c *TemperatureCollector) platformGPU(ctx context.Context) *float64 {
	if c.platform == nil {
		return nil
	}
	temp, err := c.platform.GPUTemperature(ctx)
	if err != nil {
		c.logger.Debug("Platform GPU temperature unavailable",
			zap.String("platform", c.platform.Name()),
			zap.Error(err))
		return nil
	}
	if !isValidTemperature(temp) {
		return nil
	}
	return &temp
}

func hottest(current *float64, reading float64) *float64 {
	if current == nil || reading > *current {
		return &reading
	}
	return current
}

func matchesSensor(name string, keys []string) bool {
	for _, key := range keys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

func isValidTemperature(temp float64) bool {
	return temp > minValidTemp && temp <= maxValidTemp
}
