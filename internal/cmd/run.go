package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Alia5/padrelay/input"
	"github.com/Alia5/padrelay/internal/command"
	"github.com/Alia5/padrelay/internal/instance"
	"github.com/Alia5/padrelay/internal/log"
	"github.com/Alia5/padrelay/internal/metrics"
	"github.com/Alia5/padrelay/internal/profile"
	"github.com/Alia5/padrelay/internal/server/api"
	"github.com/Alia5/padrelay/relay"
	"github.com/Alia5/padrelay/slots"
	"github.com/Alia5/padrelay/wire"
)

const (
	// inputServerGrace is how long the input server gets to exit on its own.
	inputServerGrace = 2 * time.Second
	// inputServerKillGrace is how long SIGTERM gets before SIGKILL.
	inputServerKillGrace = time.Second
)

type MetricsConfig struct {
	Addr string `help:"Serve Prometheus metrics on this address (empty disables)" default:"" env:"PADRELAY_METRICS_ADDR"`
}

// Run starts the relay daemon.
type Run struct {
	InputServer  string   `help:"Path to the SDL event server executable" default:"./sdl_event_server" env:"PADRELAY_INPUT_SERVER"`
	InputArgs    []string `help:"Extra arguments passed to the input server" env:"PADRELAY_INPUT_ARGS"`
	TickRate     int      `help:"Ticks per second" default:"60" env:"PADRELAY_TICK_RATE"`
	Bind         string   `help:"Local UDP address frames are sent from" default:"0.0.0.0:8000" env:"PADRELAY_BIND"`
	Port         int      `help:"Destination UDP port" default:"8000" env:"PADRELAY_PORT"`
	IPs          []string `name:"ips" help:"Initial destination addresses" env:"PADRELAY_IPS"`
	Connect      bool     `help:"Start sending frames right away (requires --ips)" env:"PADRELAY_CONNECT"`
	NoStdio      bool     `help:"Do not read commands from stdin" env:"PADRELAY_NO_STDIO"`
	Profile      string   `help:"Slot profile applied at start (YAML, TOML or JSON)" type:"path" env:"PADRELAY_PROFILE"`
	ProfileWatch bool     `help:"Re-apply the profile whenever the file changes" env:"PADRELAY_PROFILE_WATCH"`
	LockFile     string   `help:"Single-instance lock file (default: in the temp dir)" env:"PADRELAY_LOCK_FILE"`

	API     api.ServerConfig `embed:"" prefix:"api."`
	Metrics MetricsConfig    `embed:"" prefix:"metrics."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock, err := instance.Acquire(r.LockFile)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	sender, err := wire.Listen(r.Bind, r.Port, rawLogger)
	if err != nil {
		return err
	}
	defer sender.Close()
	if len(r.IPs) > 0 {
		if err := sender.SetIPs(r.IPs); err != nil {
			return err
		}
	}

	proc, err := input.StartProcess(r.InputServer, r.InputArgs...)
	if err != nil {
		return err
	}
	logger.Info("Started input server", "path", r.InputServer, "pid", proc.Pid())
	defer stopInputServer(proc, logger)

	src := input.NewSource(proc.Stdout(), logger.With("component", "input"))
	defer src.Close()

	engine := relay.New(ctx, slots.New(logger.With("component", "slots")), sender, src, proc, logger)
	return r.serve(engine, logger)
}

func (r *Run) serve(engine *relay.Engine, logger *slog.Logger) error {
	ctx := engine.Context()
	if r.Profile != "" {
		p, err := profile.Load(r.Profile)
		if err != nil {
			return err
		}
		if err := p.Apply(engine); err != nil {
			return err
		}
		logger.Info("Applied profile", "path", r.Profile)
	}
	if r.Connect {
		if err := engine.Connect(); err != nil {
			return err
		}
	}

	clock := relay.NewClock(r.TickRate)
	var wg sync.WaitGroup
	engineTicks := clock.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		engine.Run(engineTicks)
	}()

	if !r.NoStdio {
		session := command.NewSession(command.NewHandler(engine, logger.With("component", "stdio")), os.Stdin, os.Stdout, logger)
		sessionTicks := clock.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer session.Close()
			if err := session.Run(ctx, sessionTicks); err != nil {
				engine.Shutdown(err)
			}
		}()
	}

	if r.Profile != "" && r.ProfileWatch {
		reloader := profile.NewReloader(r.Profile, engine, logger.With("component", "profile"))
		reloadTicks := clock.Subscribe()
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := reloader.Watch(ctx); err != nil {
				logger.Error("profile watch failed", "path", r.Profile, "error", err)
			}
		}()
		go func() {
			defer wg.Done()
			reloader.Run(ctx, reloadTicks)
		}()
	}

	srvErrCh := make(chan error, 2)
	if r.API.Addr != "" {
		apiSrv := api.New(command.NewHandler(engine, logger.With("component", "api")), r.API, logger)
		if err := apiSrv.Start(); err != nil {
			engine.Shutdown(err)
		} else {
			defer apiSrv.Close()
		}
	}
	if r.Metrics.Addr != "" {
		metricsSrv, err := metrics.Listen(r.Metrics.Addr, logger)
		if err != nil {
			engine.Shutdown(err)
		} else {
			go func() { srvErrCh <- metricsSrv.Serve() }()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = metricsSrv.Shutdown(shutdownCtx)
			}()
		}
	}

	go clock.Run(ctx)
	logger.Info("Relay running", "tick_rate", r.TickRate, "bind", r.Bind, "port", r.Port)

	select {
	case <-engine.Done():
	case err := <-srvErrCh:
		if err != nil {
			engine.Shutdown(err)
		}
	}
	logger.Info("Shutting down relay")
	wg.Wait()
	return engine.Err()
}

func stopInputServer(proc *input.Process, logger *slog.Logger) {
	if err := proc.Exit(); err != nil {
		logger.Warn("input server did not accept exit", "error", err)
	}
	waitCh := make(chan error, 1)
	go func() { waitCh <- proc.Wait() }()
	select {
	case err := <-waitCh:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			logger.Warn("input server wait failed", "error", err)
		}
	case <-time.After(inputServerGrace):
		logger.Warn("input server still running, killing it", "pid", proc.Pid())
		if err := proc.Kill(inputServerKillGrace); err != nil {
			logger.Warn("failed to kill input server", "pid", proc.Pid(), "error", err)
		}
		<-waitCh
	}
}
