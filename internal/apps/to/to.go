// Package to implements the telemetry-downlink app: it forwards
// every bus packet that matches one of its configured telemetry sets,
// after per-item decimation, to a single private downlink Connector.
// Anything that connector receives is posted into TO's own inbound
// queue: on its next Run, TO executes ToCmds addressed to its instance
// and runs every other packet through the same set matching. Those
// packets are not delivered to other apps on the bus.
package to

import (
	"log/slog"

	"github.com/jcweaver997/rfe/internal/connector"
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfe"
)

// App is the TO application.
type App struct {
	logger   *slog.Logger
	downlink connector.Connector
	tlmSets  map[msg.TlmSetId]msg.ToTlmSet
	outData  msg.ToOutData
	hk       msg.ToHk
}

// New creates a TO app that forwards matching packets over downlink.
// A nil logger falls back to slog.Default.
func New(downlink connector.Connector, tlmSets map[msg.TlmSetId]msg.ToTlmSet, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	sets := make(map[msg.TlmSetId]msg.ToTlmSet, len(tlmSets))
	for id, s := range tlmSets {
		sets[id] = s
	}
	return &App{
		logger:   logger.With("app", "to"),
		downlink: downlink,
		tlmSets:  sets,
	}
}

func (a *App) updateSubscriptions(h *rfe.Handle) {
	h.UnsubscribeAll()
	h.Subscribe(msg.TargetMsg{Instance: h.Instance(), Kind: msg.KindToCmd})
	for _, set := range a.tlmSets {
		if !set.Enabled {
			continue
		}
		for _, item := range set.Items {
			h.Subscribe(item.Target)
		}
	}
}

func (a *App) Init(h *rfe.Handle) error {
	a.outData = msg.ToOutData{}
	a.hk = msg.ToHk{}
	a.updateSubscriptions(h)
	return nil
}

func (a *App) Run(h *rfe.Handle) {
	a.outData.Counter++

	var toSend []msg.MsgPacket
	for {
		p, ok := h.Recv()
		if !ok {
			break
		}
		if cmd, isCmd := p.Msg.(msg.ToCmd); isCmd && p.Instance == h.Instance() {
			a.handleCmd(h, cmd)
			continue
		}
		toSend = append(toSend, a.selectMatches(p)...)
	}
	if len(toSend) > 0 {
		a.downlink.Send(toSend)
	}

	for {
		pkts, ok := a.downlink.Recv()
		if !ok {
			break
		}
		for _, p := range pkts {
			h.PostMessage(p)
		}
	}
}

// selectMatches tests p against every enabled set's items, returning p
// once per item that both matches and is selected by the decimation
// law. Every matching item's counter advances regardless of selection.
func (a *App) selectMatches(p msg.MsgPacket) []msg.MsgPacket {
	target := p.Target()
	var out []msg.MsgPacket

	for id, set := range a.tlmSets {
		if !set.Enabled {
			continue
		}
		for i := range set.Items {
			item := &set.Items[i]
			if !item.Matches(target) {
				continue
			}
			if item.Selected() {
				out = append(out, p)
			}
			item.Counter++
		}
		a.tlmSets[id] = set
	}
	return out
}

func (a *App) handleCmd(h *rfe.Handle, cmd msg.ToCmd) {
	switch cmd.Op {
	case msg.ToCmdNoop:
		a.logger.Debug("noop command received")

	case msg.ToCmdReset:
		a.logger.Info("reset command received")
		a.outData = msg.ToOutData{}
		a.hk = msg.ToHk{}

	case msg.ToCmdAddTlmSet:
		if _, exists := a.tlmSets[cmd.TlmSet.ID]; exists {
			a.logger.Error("could not add tlm set, already exists", "tlm_set_id", cmd.TlmSet.ID)
			return
		}
		a.tlmSets[cmd.TlmSet.ID] = cmd.TlmSet
		a.logger.Info("tlm set added", "tlm_set_id", cmd.TlmSet.ID)
		a.updateSubscriptions(h)

	case msg.ToCmdRemoveTlmSet:
		if _, exists := a.tlmSets[cmd.TlmSetID]; !exists {
			a.logger.Warn("cannot remove tlm set, does not exist", "tlm_set_id", cmd.TlmSetID)
			return
		}
		delete(a.tlmSets, cmd.TlmSetID)
		a.logger.Info("tlm set removed", "tlm_set_id", cmd.TlmSetID)
		a.updateSubscriptions(h)

	case msg.ToCmdDisableTlmSet:
		set, exists := a.tlmSets[cmd.TlmSetID]
		if !exists {
			a.logger.Warn("could not disable set, does not exist", "tlm_set_id", cmd.TlmSetID)
			return
		}
		set.Enabled = false
		a.tlmSets[cmd.TlmSetID] = set
		a.logger.Info("set disabled", "tlm_set_id", cmd.TlmSetID)
		a.updateSubscriptions(h)

	case msg.ToCmdEnableTlmSet:
		set, exists := a.tlmSets[cmd.TlmSetID]
		if !exists {
			a.logger.Warn("could not enable set, does not exist", "tlm_set_id", cmd.TlmSetID)
			return
		}
		set.Enabled = true
		a.tlmSets[cmd.TlmSetID] = set
		a.logger.Info("set enabled", "tlm_set_id", cmd.TlmSetID)
		a.updateSubscriptions(h)
	}
}

func (a *App) Hk(h *rfe.Handle) {
	h.Send(a.hk)
}

func (a *App) OutData(h *rfe.Handle) {
	h.Send(a.outData)
}

func (a *App) Rate() rfe.Rate { return rfe.Rate50Hz }
