package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Jverbist/S1-hyperautomation/internal/status"
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
	"lampClass": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "FLASHING":
			return "flashing"
		default:
			return "off"
		}
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Lamp Relay</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.flashing { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Lamp Relay</h1>

<table>
<tr><th>Lamp</th><td class="{{lampClass (printf "%s" .Lamp)}}">{{.Lamp}}</td></tr>
{{if .LastPattern}}<tr><th>Last pattern</th><td>{{.LastPattern.Flashes}} flashes over {{.LastPattern.Duration}}</td></tr>{{end}}
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 UTC"}}</td></tr>
</table>

<table>
<tr><th>Flashes started</th><td>{{.Counts.FlashesStarted}}</td></tr>
<tr><th>Flashes completed</th><td>{{.Counts.FlashesCompleted}}</td></tr>
<tr><th>Superseded</th><td>{{.Counts.Superseded}}</td></tr>
<tr><th>Turned on</th><td>{{.Counts.TurnedOn}}</td></tr>
<tr><th>Turned off</th><td>{{.Counts.TurnedOff}}</td></tr>
</table>

<table>
<tr><th>Relay pin</th><td>GPIO{{.Config.Pin}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
{{if .Config.Broker}}<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{.Config.Broker}} ({{if .MQTTConnected}}connected{{else}}disconnected{{end}})</td></tr>{{else}}<tr><th>MQTT</th><td>disabled</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Best effort: a template error should not take down the daemon.
	_ = indexTmpl.Execute(w, snap)
}
