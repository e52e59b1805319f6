package command

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/sweeney/thermostat/internal/thermostat"
)

// TargetStep is how far one button press moves the target, in degrees.
const TargetStep = 1.0

// Router turns raw external inputs into normalized commands on the queue.
// Unknown mode tokens and unparseable values are dropped here; the state
// machine never sees an invalid input.
type Router struct {
	queue  *Queue
	logger *slog.Logger
}

// NewRouter creates a router feeding the given queue.
func NewRouter(queue *Queue, logger *slog.Logger) *Router {
	return &Router{
		queue:  queue,
		logger: logger.With(slog.String("component", "router")),
	}
}

// haModes maps Home Assistant mode vocabulary onto ours. HA has no manual
// mode and calls fan mode "fan_only".
var haModes = map[string]thermostat.Mode{
	"fan_only": thermostat.ModeFan,
}

// ModeCommand handles a remote mode change request.
func (r *Router) ModeCommand(payload string) {
	token := strings.TrimSpace(strings.ToLower(payload))
	mode, ok := haModes[token]
	if !ok {
		mode = thermostat.Mode(token)
	}
	if !mode.Valid() {
		r.logger.Warn("ignoring unknown mode", slog.String("payload", payload))
		return
	}
	r.queue.Enqueue(Command{Kind: KindSetMode, Mode: mode})
}

// TargetCommand handles a remote target temperature request. The value is
// clamped to the configured limits when applied.
func (r *Router) TargetCommand(payload string) {
	value, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		r.logger.Warn("ignoring unparseable target", slog.String("payload", payload))
		return
	}
	r.queue.Enqueue(Command{Kind: KindSetTarget, Value: value})
}

// ApplianceCommand handles a remote manual switch request ("ON"/"OFF") for
// the given appliance.
func (r *Router) ApplianceCommand(appliance thermostat.Appliance, payload string) {
	var on bool
	switch strings.TrimSpace(strings.ToUpper(payload)) {
	case "ON":
		on = true
	case "OFF":
		on = false
	default:
		r.logger.Warn("ignoring unknown switch payload",
			slog.String("appliance", string(appliance)), slog.String("payload", payload))
		return
	}
	r.queue.Enqueue(Command{Kind: KindSetAppliance, Appliance: appliance, On: on})
}

// MasterOff handles the remote master switch: mode is forced to off whatever
// the current mode is.
func (r *Router) MasterOff() {
	r.queue.Enqueue(Command{Kind: KindMasterOff})
}

// ModePress handles the local mode-cycle button.
func (r *Router) ModePress() {
	r.queue.Enqueue(Command{Kind: KindCycleMode})
}

// TargetPress handles the local target-adjust button: short press increments,
// long press decrements.
func (r *Router) TargetPress(long bool) {
	step := TargetStep
	if long {
		step = -TargetStep
	}
	r.queue.Enqueue(Command{Kind: KindAdjustTarget, Step: step})
}
