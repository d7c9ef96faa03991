// systemd unit collector. Summarises unit states over D-Bus so that failed
// services show up in the snapshot. Registered only on hosts booted with systemd.
package collector

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/coreos/go-systemd/v22/dbus"
)

// systemdRuntimeDir exists only when systemd is PID 1.
const systemdRuntimeDir = "/run/systemd/system"

// ServicesResult summarises systemd units.
type ServicesResult struct {
	Units         int            `json:"units" yaml:"units"`
	ByActiveState map[string]int `json:"by_active_state" yaml:"by_active_state"`
	Failed        []string       `json:"failed" yaml:"failed"`
}

// ServicesCollector collects systemd unit states.
type ServicesCollector struct {
	list func(ctx context.Context) ([]dbus.UnitStatus, error)
}

// NewServicesCollector creates a collector backed by the system bus.
func NewServicesCollector() *ServicesCollector {
	return &ServicesCollector{list: listUnits}
}

// Name returns the category name.
func (c *ServicesCollector) Name() string { return "services" }

// Collect lists units and counts them by active state.
func (c *ServicesCollector) Collect(ctx context.Context) (any, error) {
	units, err := c.list(ctx)
	if err != nil {
		return nil, err
	}
	return summarizeUnits(units), nil
}

// IsAvailable reports whether the host runs systemd.
func (c *ServicesCollector) IsAvailable() bool {
	fi, err := os.Lstat(systemdRuntimeDir)
	return err == nil && fi.IsDir()
}

func listUnits(ctx context.Context) ([]dbus.UnitStatus, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	defer conn.Close()

	units, err := conn.ListUnitsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	return units, nil
}

func summarizeUnits(units []dbus.UnitStatus) ServicesResult {
	result := ServicesResult{
		Units:         len(units),
		ByActiveState: make(map[string]int),
		Failed:        []string{},
	}
	for _, u := range units {
		result.ByActiveState[u.ActiveState]++
		if u.ActiveState == "failed" {
			result.Failed = append(result.Failed, u.Name)
		}
	}
	sort.Strings(result.Failed)
	return result
}
