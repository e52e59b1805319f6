package status

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/thermostat/internal/connectivity"
	"github.com/sweeney/thermostat/internal/thermostat"
)

var (
	temperatureCelsius = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "zone", "temperature_celsius"),
		"Current zone temperature in degrees celsius",
		nil,
		nil,
	)

	targetTempCelsius = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "zone", "target_temp_celsius"),
		"Target temperature in degrees celsius",
		nil,
		nil,
	)

	humidityPercentage = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "zone", "humidity_percentage"),
		"Current zone relative humidity",
		nil,
		nil,
	)

	modeState = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "control", "mode"),
		"Operating mode. 1 for the active mode, 0 otherwise",
		[]string{"mode"},
		nil,
	)

	applianceState = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "control", "appliance_on"),
		"Appliance relay state. 1 if the relay is on",
		[]string{"appliance"},
		nil,
	)

	deferredState = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "control", "deferred"),
		"1 while a state change is held back by the cycle lock",
		nil,
		nil,
	)

	sensorFaults = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "sensor", "faults_total"),
		"Number of failed sensor reads since startup",
		nil,
		nil,
	)

	linkUp = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "link", "up"),
		"Connectivity channel state. 1 if the channel is connected",
		[]string{"channel"},
		nil,
	)

	linkFailures = prometheus.NewDesc(
		prometheus.BuildFQName("thermostat", "link", "failures"),
		"Consecutive health check failures on a connectivity channel",
		[]string{"channel"},
		nil,
	)
)

// Collector exposes the tracker's snapshot as Prometheus metrics.
type Collector struct {
	Tracker *Tracker
}

// Describe implements prometheus.Collector.
func (c Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- temperatureCelsius
	ch <- targetTempCelsius
	ch <- humidityPercentage
	ch <- modeState
	ch <- applianceState
	ch <- deferredState
	ch <- sensorFaults
	ch <- linkUp
	ch <- linkFailures
}

// Collect implements prometheus.Collector.
func (c Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.Tracker.Snapshot()

	ch <- prometheus.MustNewConstMetric(temperatureCelsius, prometheus.GaugeValue, snap.Actual)
	ch <- prometheus.MustNewConstMetric(targetTempCelsius, prometheus.GaugeValue, snap.Target)
	ch <- prometheus.MustNewConstMetric(humidityPercentage, prometheus.GaugeValue, snap.Humidity)

	for _, m := range thermostat.Modes {
		ch <- prometheus.MustNewConstMetric(modeState, prometheus.GaugeValue, boolValue(m == snap.Mode), string(m))
	}

	ch <- prometheus.MustNewConstMetric(applianceState, prometheus.GaugeValue, boolValue(snap.Heating), string(thermostat.Heating))
	ch <- prometheus.MustNewConstMetric(applianceState, prometheus.GaugeValue, boolValue(snap.Cooling), string(thermostat.Cooling))
	ch <- prometheus.MustNewConstMetric(applianceState, prometheus.GaugeValue, boolValue(snap.Fan), string(thermostat.Fan))

	ch <- prometheus.MustNewConstMetric(deferredState, prometheus.GaugeValue, boolValue(snap.Deferred))
	ch <- prometheus.MustNewConstMetric(sensorFaults, prometheus.CounterValue, float64(snap.SensorFaults))

	collectLink(ch, "bus", snap.Bus)
	collectLink(ch, "network", snap.Network)
}

func collectLink(ch chan<- prometheus.Metric, name string, l Link) {
	ch <- prometheus.MustNewConstMetric(linkUp, prometheus.GaugeValue, boolValue(l.State == connectivity.StateConnected), name)
	ch <- prometheus.MustNewConstMetric(linkFailures, prometheus.GaugeValue, float64(l.Failures), name)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
