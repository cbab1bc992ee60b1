// Package hs implements the housekeeping-and-watchdog app: resource
// usage telemetry plus a watchdog enable/disable latch that tracks a
// manual override on top of an automatically computed value.
package hs

import (
	"log/slog"

	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfe"
)

// Config selects which resource probes run each cycle and seeds the
// watchdog's initial state.
type Config struct {
	CPUChecks       bool
	MemChecks       bool
	FsChecks        bool
	TempChecks      bool
	WatchdogEnable  bool
	WatchdogTimeout int32
}

// App is the HS application.
type App struct {
	logger *slog.Logger
	cfg    Config
	probe  SystemInfoProbe
	wd     Watchdog

	wdValue *rfe.ManualAuto[bool]

	hk      msg.HsHk
	outData msg.HsOutData
}

// New creates an HS app. A nil probe defaults to NoopSystemInfoProbe,
// a nil watchdog to NoopWatchdog, a nil logger to slog.Default. The
// watchdog is armed or disarmed immediately per cfg.WatchdogEnable.
func New(cfg Config, probe SystemInfoProbe, wd Watchdog, logger *slog.Logger) *App {
	if probe == nil {
		probe = NoopSystemInfoProbe{}
	}
	if wd == nil {
		wd = NoopWatchdog{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	wd.SetTimeout(cfg.WatchdogTimeout)
	if cfg.WatchdogEnable {
		wd.Enable()
	} else {
		wd.Disable()
	}

	return &App{
		logger:  logger.With("app", "hs"),
		cfg:     cfg,
		probe:   probe,
		wd:      wd,
		wdValue: rfe.NewManualAuto(cfg.WatchdogEnable, false),
	}
}

func (a *App) reset() {
	a.hk = msg.HsHk{}
	a.outData = msg.HsOutData{}
}

func (a *App) Init(h *rfe.Handle) error {
	a.reset()
	h.Subscribe(msg.TargetMsg{Instance: h.Instance(), Kind: msg.KindHsCmd})
	return nil
}

func (a *App) Run(h *rfe.Handle) {
	a.hk.Perf.Enter(h.MonotonicMicros())
	a.outData.Counter++

	for {
		p, ok := h.Recv()
		if !ok {
			break
		}
		cmd, isCmd := p.Msg.(msg.HsCmd)
		if !isCmd {
			a.logger.Warn("unexpected message", "kind", p.Msg.Kind(), "from", p.Instance)
			continue
		}
		a.hk.CmdCounter++
		switch cmd.Op {
		case msg.HsCmdNoop:
			a.logger.Debug("noop command received")
		case msg.HsCmdReset:
			a.logger.Info("reset command received")
			a.reset()
		case msg.HsCmdWatchdogEnableManual:
			a.wdValue.ManualSet(cmd.BoolArg)
		case msg.HsCmdWatchdogEnableAuto:
			a.wdValue.AutoSet(cmd.BoolArg)
		case msg.HsCmdWatchdogResumeAuto:
			a.wdValue.ResumeAuto()
		}
	}

	if a.wdValue.HasChanged() {
		if a.wdValue.Get() {
			a.wd.Enable()
		} else {
			a.wd.Disable()
		}
	}
	a.wd.Feed()

	if a.cfg.CPUChecks {
		a.hk.CPUUsage = a.probe.CPUUsage()
		a.hk.CPUUsageEnabled = true
	}
	if a.cfg.MemChecks {
		a.hk.MemUsage = a.probe.MemUsage()
		a.hk.MemUsageEnabled = true
	}
	if a.cfg.FsChecks {
		a.hk.FsUsage = a.probe.FsUsage()
		a.hk.FsUsageEnabled = true
	}
	if a.cfg.TempChecks {
		a.hk.Temps = a.probe.Temps()
	}
	a.hk.Perf.Exit(h.MonotonicMicros())
}

func (a *App) Hk(h *rfe.Handle) {
	a.hk.Counter = a.outData.Counter
	h.Send(a.hk)
}

func (a *App) OutData(h *rfe.Handle) {
	h.Send(a.outData)
}

func (a *App) Rate() rfe.Rate { return rfe.Rate1Hz }
