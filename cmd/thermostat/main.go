// Command thermostat runs the single-zone thermostat control daemon: it reads
// the zone sensor, drives the heating/cooling/fan relays over MQTT, and serves
// a local status page.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/thermostat/internal/button"
	"github.com/sweeney/thermostat/internal/command"
	"github.com/sweeney/thermostat/internal/config"
	"github.com/sweeney/thermostat/internal/connectivity"
	"github.com/sweeney/thermostat/internal/mqtt"
	"github.com/sweeney/thermostat/internal/sensor"
	"github.com/sweeney/thermostat/internal/status"
	"github.com/sweeney/thermostat/internal/thermostat"
	"github.com/sweeney/thermostat/internal/web"
)

const commandQueueSize = 16

func main() {
	configPath := flag.String("config", "/etc/thermostat.yaml", "Configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", slog.Any("err", err))
		os.Exit(1)
	}
	if *broker != "" {
		cfg.Broker = *broker
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	if err := run(cfg, logger); err != nil {
		// A non-zero exit hands recovery to the supervisor, which restarts
		// the daemon into the safe default state (everything off).
		logger.Error("fatal", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	queue := command.NewQueue(commandQueueSize, logger)
	router := command.NewRouter(queue, logger)

	bus, err := mqtt.NewClient(cfg, router, logger)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer bus.Close()

	reader, err := sensor.NewRealReader(cfg.Sensor.TemperaturePath, cfg.Sensor.HumidityPath,
		cfg.Control.MinTemp, cfg.Control.MaxTemp)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	source := sensor.NewSource(reader, logger)
	defer source.Close()

	buttons, err := button.NewRealSource(cfg.Buttons.Chip, cfg.Buttons.ModePin, cfg.Buttons.TargetPin,
		time.Duration(cfg.Buttons.LongPressMs)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	netAddr, err := probeAddr(cfg.Broker)
	if err != nil {
		return fmt.Errorf("resolve probe address: %w", err)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Broker:          cfg.Broker,
		HTTPAddr:        cfg.HTTPAddr,
		DisplayUnit:     cfg.DisplayUnit,
		MinTarget:       cfg.Control.MinTarget,
		MaxTarget:       cfg.Control.MaxTarget,
		UpdateSeconds:   cfg.Control.UpdateSeconds,
		MinCycleSeconds: cfg.Control.MinCycleSeconds,
	})

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, prometheus.NewRegistry())
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", slog.Any("err", err))
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", slog.String("addr", cfg.HTTPAddr))
	}

	d := &daemon{
		machine: thermostat.NewMachine(thermostat.Tolerances{Cold: cfg.Control.ColdTolerance, Heat: cfg.Control.HeatTolerance}),
		gate:    thermostat.NewGate(cfg.Control.MinCycleSeconds),
		limits:  command.Limits{MinTarget: cfg.Control.MinTarget, MaxTarget: cfg.Control.MaxTarget},
		queue:   queue,
		router:  router,
		source:  source,
		pub:     bus,
		busMon: connectivity.NewMonitor("bus", bus, cfg.Connectivity.MaxFailures,
			cfg.RetryDelay(), cfg.ProbeTimeout(), logger),
		netMon: connectivity.NewMonitor("network", connectivity.NewNetworkProber(netAddr),
			cfg.Connectivity.MaxFailures, cfg.RetryDelay(), cfg.ProbeTimeout(), logger),
		buttons: buttons,
		tracker: tracker,
		logger:  logger.With(slog.String("component", "daemon")),
	}

	logger.Info("started",
		slog.String("broker", cfg.Broker),
		slog.Duration("update", cfg.UpdateInterval()),
		slog.Int("minCycle", cfg.Control.MinCycleSeconds))

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	updater := time.NewTicker(cfg.UpdateInterval())
	defer updater.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return d.runLoop(context.Background(), ticker.C, updater.C, sigCh)
}

// daemon ties the control loop's collaborators together.
type daemon struct {
	machine *thermostat.Machine
	gate    *thermostat.Gate
	limits  command.Limits
	queue   *command.Queue
	router  *command.Router
	source  *sensor.Source
	pub     mqtt.Publisher
	busMon  *connectivity.Monitor
	netMon  *connectivity.Monitor
	buttons button.Source
	tracker *status.Tracker
	logger  *slog.Logger
}

// runLoop is the single writer of the thermostat state. It applies queued
// commands and counts down the cycle lock every second, and re-reads the
// sensor and re-evaluates on the slower update tick.
func (d *daemon) runLoop(ctx context.Context, tick, update <-chan time.Time, sig <-chan os.Signal) error {
	state := thermostat.NewState()

	// Prime the state before accepting commands so the first evaluation
	// never runs against a zero temperature.
	reading := d.source.Read()
	state.Actual = reading.Temperature
	humidity := reading.Humidity

	d.announce(&state)
	d.tracker.Update(state, humidity, d.source.Faults())

	for {
		select {
		case s := <-sig:
			d.logger.Info("shutting down", slog.Any("signal", s))
			if err := d.pub.PublishAvailability(false); err != nil {
				d.logger.Warn("availability publish failed", slog.Any("err", err))
			}
			return nil

		case press := <-d.buttons.Presses():
			switch press.Button {
			case button.ButtonMode:
				d.router.ModePress()
			case button.ButtonTarget:
				d.router.TargetPress(press.Long)
			}

		case <-tick:
			d.applyCommands(&state)
			if d.gate.Tick(&state) {
				// Lock just expired with a change still pending.
				d.evaluate(&state)
			}
			d.tracker.Update(state, humidity, d.source.Faults())

		case <-update:
			reading := d.source.Read()
			state.Actual = reading.Temperature
			humidity = reading.Humidity
			d.evaluate(&state)

			healthy, err := d.checkHealth(ctx)
			if err != nil {
				return err
			}
			if healthy {
				d.publishTelemetry(&state, reading)
			}
			d.tracker.Update(state, humidity, d.source.Faults())
		}
	}
}

// announce publishes the retained startup state: discovery, availability, and
// the initial safe defaults.
func (d *daemon) announce(state *thermostat.State) {
	if err := d.pub.PublishDiscovery(); err != nil {
		d.logger.Warn("discovery publish failed", slog.Any("err", err))
	}
	if err := d.pub.PublishAvailability(true); err != nil {
		d.logger.Warn("availability publish failed", slog.Any("err", err))
	}
	for _, a := range []thermostat.Appliance{thermostat.Heating, thermostat.Cooling, thermostat.Fan} {
		d.publishRelay(a, false)
	}
	d.publishMode(state.Mode)
	d.publishTarget(state.Target)
	d.publishAction(state.Action())
}

// applyCommands drains the queue and applies each command in arrival order,
// reporting externally visible changes. Any applied command triggers an
// immediate re-evaluation.
func (d *daemon) applyCommands(state *thermostat.State) {
	cmds := d.queue.Drain()
	if len(cmds) == 0 {
		return
	}

	for _, c := range cmds {
		changed := command.Apply(state, c, d.limits)
		if changed.Mode {
			d.logger.Info("mode changed", slog.String("mode", string(state.Mode)))
			d.publishMode(state.Mode)
		}
		if changed.Target {
			d.logger.Info("target changed", slog.Float64("target", state.Target))
			d.publishTarget(state.Target)
		}
	}
	d.evaluate(state)
}

// evaluate runs the decision chain and pushes any admitted change to the
// relays. A deferral raises the blink advisory; it clears on the next
// admission or when the pending change becomes moot.
func (d *daemon) evaluate(state *thermostat.State) {
	req := d.machine.Evaluate(*state)
	if req == nil {
		if state.Deferred && state.LockRemaining == 0 {
			// The deferred change is no longer wanted.
			state.Deferred = false
			d.publishDeferred(false)
		}
		return
	}

	wasDeferred := state.Deferred
	outcome := d.gate.Admit(state, *req)
	if !outcome.Admitted {
		if !wasDeferred {
			d.logger.Info("change deferred by cycle lock",
				slog.String("appliance", string(req.Appliance)),
				slog.Bool("on", req.On),
				slog.Int("lockRemaining", state.LockRemaining))
			d.publishDeferred(true)
		}
		return
	}

	for _, sw := range outcome.Switched {
		d.logger.Info("relay switched", slog.String("appliance", string(sw.Appliance)), slog.Bool("on", sw.On))
		d.publishRelay(sw.Appliance, sw.On)
	}
	d.publishAction(outcome.Action)
	if wasDeferred {
		d.publishDeferred(false)
	}
}

// checkHealth probes both channels. It reports whether telemetry may be
// published, and returns ErrRestartRequired once either channel is beyond
// saving.
func (d *daemon) checkHealth(ctx context.Context) (bool, error) {
	netHealth, err := d.netMon.Check(ctx)
	d.tracker.SetNetwork(status.Link{State: d.netMon.State(), Failures: d.netMon.Failures()})
	if err != nil {
		return false, fmt.Errorf("network channel: %w", err)
	}

	busHealth, err := d.busMon.Check(ctx)
	d.tracker.SetBus(status.Link{State: d.busMon.State(), Failures: d.busMon.Failures()})
	if err != nil {
		return false, fmt.Errorf("bus channel: %w", err)
	}

	return netHealth == connectivity.Healthy && busHealth == connectivity.Healthy, nil
}

// publishTelemetry reports the periodic state snapshot on the bus.
func (d *daemon) publishTelemetry(state *thermostat.State, reading sensor.Reading) {
	if err := d.pub.PublishSensorState(reading); err != nil {
		d.logger.Warn("sensor publish failed", slog.Any("err", err))
	}
	d.publishMode(state.Mode)
	d.publishTarget(state.Target)
	d.publishAction(state.Action())
}

func (d *daemon) publishMode(mode thermostat.Mode) {
	if err := d.pub.PublishMode(mode); err != nil {
		d.logger.Warn("mode publish failed", slog.Any("err", err))
	}
}

func (d *daemon) publishTarget(target float64) {
	if err := d.pub.PublishTarget(target); err != nil {
		d.logger.Warn("target publish failed", slog.Any("err", err))
	}
}

func (d *daemon) publishAction(action thermostat.Action) {
	if err := d.pub.PublishAction(action); err != nil {
		d.logger.Warn("action publish failed", slog.Any("err", err))
	}
}

func (d *daemon) publishRelay(a thermostat.Appliance, on bool) {
	if err := d.pub.PublishRelay(a, on); err != nil {
		d.logger.Warn("relay publish failed", slog.String("appliance", string(a)), slog.Any("err", err))
	}
}

func (d *daemon) publishDeferred(deferred bool) {
	if err := d.pub.PublishDeferred(deferred); err != nil {
		d.logger.Warn("deferred publish failed", slog.Any("err", err))
	}
}

// probeAddr derives the TCP reachability target from the broker URL.
func probeAddr(broker string) (string, error) {
	u, err := url.Parse(broker)
	if err != nil {
		return "", fmt.Errorf("parse broker %q: %w", broker, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("broker %q has no host", broker)
	}
	port := u.Port()
	if port == "" {
		port = "1883"
	}
	return u.Hostname() + ":" + port, nil
}
