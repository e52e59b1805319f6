package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/thermostat/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"temp": func(celsius float64, unit string) string {
		if unit == "F" {
			return fmt.Sprintf("%.1f °F", celsius*9/5+32)
		}
		return fmt.Sprintf("%.1f °C", celsius)
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Thermostat</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.deferred { color: orange; }
.connected { color: green; }
.reconnecting { color: orange; }
.failed { color: red; }
</style>
</head>
<body>
<h1>Thermostat</h1>

<h2>Zone</h2>
<table>
<tr><th>Mode</th><td>{{.Mode}}</td></tr>
<tr><th>Target</th><td>{{temp .Target .Config.DisplayUnit}}</td></tr>
<tr><th>Temperature</th><td>{{temp .Actual .Config.DisplayUnit}}</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Humidity}} %</td></tr>
<tr><th>Action</th><td class="{{if eq .Action "idle"}}off{{else}}on{{end}}">{{.Action}}</td></tr>
</table>

<h2>Appliances</h2>
<table>
<tr><th>Heating</th><td class="{{if .Heating}}on{{else}}off{{end}}">{{onOff .Heating}}</td></tr>
<tr><th>Cooling</th><td class="{{if .Cooling}}on{{else}}off{{end}}">{{onOff .Cooling}}</td></tr>
<tr><th>Fan</th><td class="{{if .Fan}}on{{else}}off{{end}}">{{onOff .Fan}}</td></tr>
{{if .Deferred}}<tr><th>Pending</th><td class="deferred">change deferred ({{.LockRemaining}}s lock)</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Broker</th><td class="{{.Bus.State}}">{{.Bus.State}}{{if .Bus.Failures}} ({{.Bus.Failures}} failures){{end}}</td></tr>
<tr><th>Broker URL</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Network</th><td class="{{.Network.State}}">{{.Network.State}}{{if .Network.Failures}} ({{.Network.Failures}} failures){{end}}</td></tr>
</table>

<h2>Daemon</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 MST"}}</td></tr>
<tr><th>Sensor faults</th><td>{{.SensorFaults}}</td></tr>
<tr><th>Update interval</th><td>{{.Config.UpdateSeconds}}s</td></tr>
<tr><th>Min cycle</th><td>{{.Config.MinCycleSeconds}}s</td></tr>
</table>

<p><a href="/index.json">json</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	_ = indexTmpl.Execute(w, snap)
}
