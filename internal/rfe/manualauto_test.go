package rfe

import "testing"

func TestManualAutoAutoSetWhileAuto(t *testing.T) {
	m := NewManualAuto(1, false)
	m.AutoSet(2)
	if got := m.Get(); got != 2 {
		t.Fatalf("Get() = %d, want 2", got)
	}
	if !m.HasChanged() {
		t.Fatal("expected HasChanged() true after AutoSet changes the effective value")
	}
	if m.HasChanged() {
		t.Fatal("HasChanged() must be one-shot")
	}
}

func TestManualAutoAutoSetWhileManualDoesNotFlag(t *testing.T) {
	m := NewManualAuto(1, true)
	m.AutoSet(99)
	if m.Get() != 1 {
		t.Fatalf("Get() = %d, want 1 (manual override should still be effective)", m.Get())
	}
	if m.HasChanged() {
		t.Fatal("AutoSet must not flag a change while manual, since it never affects Get()")
	}
}

func TestManualAutoManualSetFromAuto(t *testing.T) {
	m := NewManualAuto(5, false)
	m.ManualSet(5)
	if m.HasChanged() {
		t.Fatal("ManualSet to the same value as the current auto value must not flag a change")
	}
	m2 := NewManualAuto(5, false)
	m2.ManualSet(6)
	if !m2.HasChanged() {
		t.Fatal("ManualSet to a different value than the current auto value must flag a change")
	}
}

func TestManualAutoManualSetFromManualSameValue(t *testing.T) {
	m := NewManualAuto(5, true)
	m.HasChanged() // drain any initial state
	m.ManualSet(5)
	if m.HasChanged() {
		t.Fatal("re-ManualSet to the same manual value must not flag a change")
	}
}

func TestManualAutoManualSetFromManualDifferentValue(t *testing.T) {
	m := NewManualAuto(5, true)
	m.HasChanged()
	m.ManualSet(6)
	if !m.HasChanged() {
		t.Fatal("ManualSet to a different manual value must flag a change")
	}
}

func TestManualAutoResumeAutoMatchingValues(t *testing.T) {
	m := NewManualAuto(7, true)
	m.HasChanged()
	m.ResumeAuto()
	if m.HasChanged() {
		t.Fatal("ResumeAuto must not flag a change when manual and auto values already match")
	}
}

func TestManualAutoResumeAutoDivergentValues(t *testing.T) {
	m := NewManualAuto(7, false)
	m.ManualSet(9)
	m.HasChanged()
	m.ResumeAuto()
	if !m.HasChanged() {
		t.Fatal("ResumeAuto must flag a change when the manual value diverged from auto")
	}
	if m.Get() != 7 {
		t.Fatalf("Get() = %d, want 7 after resuming auto", m.Get())
	}
}

func TestManualAutoResumeAutoWhileAlreadyAuto(t *testing.T) {
	m := NewManualAuto(3, false)
	m.ResumeAuto()
	if m.HasChanged() {
		t.Fatal("ResumeAuto while already in auto mode must never flag a change")
	}
}
