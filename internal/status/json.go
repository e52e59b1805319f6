package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Mode          string           `json:"mode"`
	Target        float64          `json:"target"`
	Actual        float64          `json:"actual"`
	Humidity      float64          `json:"humidity"`
	Action        string           `json:"action"`
	Appliances    AppliancesJSON   `json:"appliances"`
	Deferred      bool             `json:"deferred"`
	LockRemaining int              `json:"lock_remaining"`
	SensorFaults  int              `json:"sensor_faults"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	Bus           LinkJSON         `json:"bus"`
	Network       LinkJSON         `json:"network"`
	Config        ConfigJSON       `json:"config"`
}

// AppliancesJSON reports the three relay states.
type AppliancesJSON struct {
	Heating bool `json:"heating"`
	Cooling bool `json:"cooling"`
	Fan     bool `json:"fan"`
}

// LinkJSON is the JSON representation of a connectivity channel.
type LinkJSON struct {
	State    string `json:"state"`
	Failures int    `json:"failures"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker          string  `json:"broker"`
	HTTPAddr        string  `json:"http_addr"`
	DisplayUnit     string  `json:"display_unit"`
	MinTarget       float64 `json:"min_target"`
	MaxTarget       float64 `json:"max_target"`
	UpdateSeconds   int     `json:"update_seconds"`
	MinCycleSeconds int     `json:"min_cycle_seconds"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Mode:     string(snap.Mode),
		Target:   snap.Target,
		Actual:   snap.Actual,
		Humidity: snap.Humidity,
		Action:   string(snap.Action),
		Appliances: AppliancesJSON{
			Heating: snap.Heating,
			Cooling: snap.Cooling,
			Fan:     snap.Fan,
		},
		Deferred:      snap.Deferred,
		LockRemaining: snap.LockRemaining,
		SensorFaults:  snap.SensorFaults,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Bus:           LinkJSON{State: string(snap.Bus.State), Failures: snap.Bus.Failures},
		Network:       LinkJSON{State: string(snap.Network.State), Failures: snap.Network.Failures},
		Config: ConfigJSON{
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
			DisplayUnit:     snap.Config.DisplayUnit,
			MinTarget:       snap.Config.MinTarget,
			MaxTarget:       snap.Config.MaxTarget,
			UpdateSeconds:   snap.Config.UpdateSeconds,
			MinCycleSeconds: snap.Config.MinCycleSeconds,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
