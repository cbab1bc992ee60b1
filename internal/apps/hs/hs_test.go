package hs

import (
	"testing"

	"github.com/jcweaver997/rfe/internal/connector"
	"github.com/jcweaver997/rfe/internal/msg"
	"github.com/jcweaver997/rfe/internal/rfe"
	"github.com/jcweaver997/rfe/internal/rfetime"
)

// fakeWatchdog records calls instead of touching real hardware.
type fakeWatchdog struct {
	enabled bool
	timeout int32
	feeds   int
}

func (f *fakeWatchdog) Enable()            { f.enabled = true }
func (f *fakeWatchdog) Disable()           { f.enabled = false }
func (f *fakeWatchdog) SetTimeout(t int32) { f.timeout = t }
func (f *fakeWatchdog) Feed()              { f.feeds++ }

func sendHsCmd(probe *connector.MemConnector, cmd msg.HsCmd) {
	probe.Send([]msg.MsgPacket{{Instance: msg.InstanceHS, Msg: cmd}})
}

// runUntilDue advances the scheduler until HS's next 1Hz due tick
// (every 100 of the scheduler's 100Hz ticks) has executed.
func runUntilDue(inst *rfe.RfeInstance, cycles int) {
	for i := 0; i < cycles; i++ {
		for inst.SchCounter()%100 != 0 {
			inst.Run()
		}
		inst.Run() // SchCounter() here is a multiple of 100: this is the due tick.
	}
}

func TestHsFeedsWatchdogEveryCycle(t *testing.T) {
	wd := &fakeWatchdog{}
	app := New(Config{WatchdogEnable: true, WatchdogTimeout: 30}, nil, wd, nil)

	inst := rfe.New(msg.InstanceHS, rfetime.NewSchedulerDriver(), nil)
	if err := inst.AddApp("hs", app); err != nil {
		t.Fatal(err)
	}

	if !wd.enabled || wd.timeout != 30 {
		t.Fatalf("expected watchdog armed at timeout 30, got enabled=%v timeout=%d", wd.enabled, wd.timeout)
	}

	runUntilDue(inst, 2)
	if wd.feeds != 2 {
		t.Errorf("feeds = %d, want 2 (one per due cycle)", wd.feeds)
	}
}

func TestHsWatchdogManualOverrideWins(t *testing.T) {
	wd := &fakeWatchdog{}
	app := New(Config{WatchdogEnable: true, WatchdogTimeout: 10}, nil, wd, nil)

	inst := rfe.New(msg.InstanceHS, rfetime.NewSchedulerDriver(), nil)
	probe, side := connector.NewMemConnectorPair(8)
	inst.AddConnector(side)
	if err := inst.AddApp("hs", app); err != nil {
		t.Fatal(err)
	}

	runUntilDue(inst, 1) // consume the first due tick with an empty inbox

	sendHsCmd(probe, msg.HsCmd{Op: msg.HsCmdWatchdogEnableManual, BoolArg: false})
	runUntilDue(inst, 1) // delivered to inbox during the cycle, then processed

	if wd.enabled {
		t.Error("expected manual override to disable the watchdog")
	}
	if !app.wdValue.IsManual() {
		t.Error("expected ManualAuto to be in manual mode")
	}

	// Auto is set true (its seeded value) underneath the manual
	// override: the manual pin must stay in effect.
	sendHsCmd(probe, msg.HsCmd{Op: msg.HsCmdWatchdogEnableAuto, BoolArg: true})
	runUntilDue(inst, 1)
	if wd.enabled {
		t.Error("auto value must not override an active manual pin")
	}

	sendHsCmd(probe, msg.HsCmd{Op: msg.HsCmdWatchdogResumeAuto})
	runUntilDue(inst, 1)
	if !wd.enabled {
		t.Error("expected resuming auto to re-apply the (now true) auto value")
	}
}

func TestHsResetClearsCounters(t *testing.T) {
	app := New(Config{}, nil, nil, nil)

	inst := rfe.New(msg.InstanceHS, rfetime.NewSchedulerDriver(), nil)
	probe, side := connector.NewMemConnectorPair(8)
	inst.AddConnector(side)
	if err := inst.AddApp("hs", app); err != nil {
		t.Fatal(err)
	}

	runUntilDue(inst, 1)
	sendHsCmd(probe, msg.HsCmd{Op: msg.HsCmdNoop})
	runUntilDue(inst, 1)

	if app.hk.CmdCounter != 1 {
		t.Fatalf("cmd_counter = %d, want 1", app.hk.CmdCounter)
	}

	sendHsCmd(probe, msg.HsCmd{Op: msg.HsCmdReset})
	runUntilDue(inst, 1)

	if app.hk.CmdCounter != 0 {
		t.Errorf("cmd_counter after reset = %d, want 0", app.hk.CmdCounter)
	}
}
