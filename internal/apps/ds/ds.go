// Package ds implements the data-storage app: it subscribes to the
// targets named by a configurable set of telemetry sets, decimates
// each set's matches independently, and writes the survivors to disk,
// indexing every file it opens in a dscatalog.Catalog.
package ds

import (
	"log/slog"
	"time"

	"github.com/jcweaver997/rfe/internal/codec"
	"github.com/jcweaver997/rfe/internal/dscatalog"
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfe"
)

// fileState tracks one open output file for a telemetry set.
type fileState struct {
	file      File
	recorded  bool // whether RecordOpen has been called for the current filename
	byteCount uint32
}

// App is the DS application.
type App struct {
	logger  *slog.Logger
	codec   codec.Codec
	catalog *dscatalog.Catalog
	newFile func(dir string) File

	tlmSets      map[msg.TlmSetId]msg.DsTlmSet
	startEnabled bool

	enabled bool
	hk      msg.DsHk
	outData msg.DsOutData
	files   map[msg.TlmSetId]*fileState
}

// New creates a DS app seeded with an initial telemetry-set roster.
// catalog may be nil, in which case file-open/close bookkeeping is
// skipped. A nil logger falls back to slog.Default.
func New(tlmSets map[msg.TlmSetId]msg.DsTlmSet, startEnabled bool, catalog *dscatalog.Catalog, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	sets := make(map[msg.TlmSetId]msg.DsTlmSet, len(tlmSets))
	for id, s := range tlmSets {
		sets[id] = s
	}
	return &App{
		logger:       logger.With("app", "ds"),
		codec:        codec.VarintCodec{},
		catalog:      catalog,
		newFile:      func(dir string) File { return NewStdFile(dir) },
		tlmSets:      sets,
		startEnabled: startEnabled,
		files:        make(map[msg.TlmSetId]*fileState),
	}
}

// SetFileFactory overrides how new output files are constructed. Tests
// use this to substitute an in-memory File.
func (a *App) SetFileFactory(f func(dir string) File) {
	a.newFile = f
}

// CloseAll closes every open output file without going through the
// bus. The host binary calls this on shutdown (SIGINT/SIGTERM) so
// telemetry already selected for a set is flushed to disk even though
// the scheduler loop has stopped ticking and can no longer deliver a
// DsCmdCloseAll command.
func (a *App) CloseAll() {
	for id := range a.files {
		a.closeFile(id)
	}
}

func (a *App) updateSubscriptions(h *rfe.Handle) {
	h.UnsubscribeAll()
	h.Subscribe(msg.TargetMsg{Instance: h.Instance(), Kind: msg.KindDsCmd})
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
	a.enabled = a.startEnabled
	a.hk = msg.DsHk{}
	a.outData = msg.DsOutData{}
	a.files = make(map[msg.TlmSetId]*fileState)
	a.updateSubscriptions(h)
	return nil
}

func (a *App) Run(h *rfe.Handle) {
	a.outData.Counter++
	a.outData.BytesWrittenThisCycle = 0

	for {
		p, ok := h.Recv()
		if !ok {
			break
		}
		if cmd, isCmd := p.Msg.(msg.DsCmd); isCmd {
			a.handleCmd(h, cmd)
			continue
		}
		if !a.enabled {
			continue
		}
		a.distribute(p)
	}

	a.outData.BytesWritten += a.outData.BytesWrittenThisCycle
}

func (a *App) handleCmd(h *rfe.Handle, cmd msg.DsCmd) {
	switch cmd.Op {
	case msg.DsCmdNoop:
		a.logger.Debug("noop command received")

	case msg.DsCmdReset:
		a.logger.Info("reset command received")
		for id := range a.files {
			a.closeFile(id)
		}
		a.hk = msg.DsHk{}
		a.outData = msg.DsOutData{}
		a.enabled = a.startEnabled

	case msg.DsCmdCloseAll:
		a.logger.Info("closeAll command received")
		for id := range a.files {
			a.closeFile(id)
		}

	case msg.DsCmdClose:
		a.logger.Info("close command received", "tlm_set_id", cmd.CloseID)
		if _, ok := a.files[cmd.CloseID]; ok {
			a.closeFile(cmd.CloseID)
		} else {
			a.logger.Error("cannot close file, no open file for set", "tlm_set_id", cmd.CloseID)
		}

	case msg.DsCmdAddTlmSet:
		if _, exists := a.tlmSets[cmd.TlmSet.ID]; exists {
			a.logger.Error("could not add tlm set, already exists", "tlm_set_id", cmd.TlmSet.ID)
			return
		}
		a.tlmSets[cmd.TlmSet.ID] = cmd.TlmSet
		a.logger.Info("tlm set added", "tlm_set_id", cmd.TlmSet.ID)
		a.updateSubscriptions(h)

	case msg.DsCmdRemoveTlmSet:
		if _, exists := a.tlmSets[cmd.TlmSetID]; !exists {
			a.logger.Warn("cannot remove tlm set, does not exist", "tlm_set_id", cmd.TlmSetID)
			return
		}
		delete(a.tlmSets, cmd.TlmSetID)
		a.logger.Info("tlm set removed", "tlm_set_id", cmd.TlmSetID)
		a.updateSubscriptions(h)

	case msg.DsCmdDisableTlmSet:
		set, exists := a.tlmSets[cmd.TlmSetID]
		if !exists {
			a.logger.Warn("could not disable set, does not exist", "tlm_set_id", cmd.TlmSetID)
			return
		}
		set.Enabled = false
		a.tlmSets[cmd.TlmSetID] = set
		a.logger.Info("set disabled", "tlm_set_id", cmd.TlmSetID)
		a.updateSubscriptions(h)

	case msg.DsCmdEnableTlmSet:
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

// distribute tests p against every enabled telemetry set's items,
// writing it to each set's file once per item that both matches and is
// selected by the decimation law (a packet matching two items in the
// same set is written twice). Each item's counter advances whenever it
// matches, independent of selection.
func (a *App) distribute(p msg.MsgPacket) {
	target := p.Target()

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
				a.writePacket(id, set, p)
			}
			item.Counter++
		}
		a.tlmSets[id] = set
	}
}

func (a *App) writePacket(id msg.TlmSetId, set msg.DsTlmSet, p msg.MsgPacket) {
	enc, err := a.codec.EncodePacket(p)
	if err != nil {
		a.logger.Error("failed to serialize packet", "tlm_set_id", id, "err", err)
		return
	}

	fs, ok := a.files[id]
	if !ok {
		fs = &fileState{file: a.newFile(set.Path)}
		a.files[id] = fs
	}

	if _, err := fs.file.Write(enc); err != nil {
		a.logger.Error("file write error", "tlm_set_id", id, "err", err)
		return
	}
	fs.byteCount += uint32(len(enc))
	a.outData.BytesWrittenThisCycle += uint32(len(enc))

	if a.catalog != nil && !fs.recorded {
		if name := fs.file.Filename(); name != "" {
			if err := a.catalog.RecordOpen(uint16(id), name, time.Now().UTC()); err != nil {
				a.logger.Error("catalog record open failed", "tlm_set_id", id, "err", err)
			}
			fs.recorded = true
		}
	}
}

func (a *App) closeFile(id msg.TlmSetId) {
	fs, ok := a.files[id]
	if !ok {
		return
	}
	fs.file.Flush()
	name := fs.file.Filename()
	fs.file.Close()
	if a.catalog != nil && fs.recorded && name != "" {
		if err := a.catalog.RecordClose(uint16(id), name, time.Now().UTC(), fs.byteCount); err != nil {
			a.logger.Error("catalog record close failed", "tlm_set_id", id, "err", err)
		}
	}
	delete(a.files, id)
}

func (a *App) Hk(h *rfe.Handle) {
	a.hk.Counter = a.outData.Counter
	h.Send(a.hk)
}

func (a *App) OutData(h *rfe.Handle) {
	h.Send(a.outData)
}

func (a *App) Rate() rfe.Rate { return rfe.Rate1Hz }
