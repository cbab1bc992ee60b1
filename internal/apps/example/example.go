// Package example is the canonical bus consumer: it demonstrates the
// full App lifecycle (init, subscribe, send, recv, self-reset) in the
// simplest possible form, and doubles as a smoke test for a scheduler
// wiring.
package example

import (
	"log/slog"

	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfe"
)

// resetThreshold is the out-data counter value above which the app
// sends itself a Reset command, demonstrating that an app can command
// itself through the ordinary bus path rather than a private method call.
const resetThreshold = 10

// App is the example application: it counts ticks, publishes
// housekeeping and output telemetry, and resets itself after enough
// output cycles have run.
type App struct {
	logger *slog.Logger

	hk      msg.ExampleHk
	outData msg.ExampleOutData
}

// New creates an Example app. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{logger: logger.With("app", "example")}
}

func (a *App) Init(h *rfe.Handle) error {
	a.hk = msg.ExampleHk{}
	a.outData = msg.ExampleOutData{}
	h.Subscribe(msg.TargetMsg{Instance: msg.InstanceOther, Kind: msg.KindExampleHk})
	h.Subscribe(msg.TargetMsg{Instance: h.Instance(), Kind: msg.KindExampleCmd})
	return nil
}

func (a *App) Run(h *rfe.Handle) {
	a.hk.Perf.Enter(h.MonotonicMicros())
	a.outData.Counter++
	a.logger.Debug("running", "out_counter", a.outData.Counter)

	for {
		p, ok := h.Recv()
		if !ok {
			break
		}
		switch m := p.Msg.(type) {
		case msg.ExampleCmd:
			switch m.Op {
			case msg.ExampleCmdNoop:
				a.logger.Debug("noop command received")
			case msg.ExampleCmdReset:
				a.logger.Info("reset command received")
				a.hk = msg.ExampleHk{}
				a.outData = msg.ExampleOutData{}
			}
		default:
			a.logger.Debug("received message", "kind", p.Msg.Kind())
		}
	}

	if a.outData.Counter > resetThreshold {
		h.Send(msg.ExampleCmd{Op: msg.ExampleCmdReset})
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
