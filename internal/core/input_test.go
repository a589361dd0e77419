package core

import "testing"

func TestInputFrameCounts(t *testing.T) {
	f := NewInputFrame()
	if f.Has(ActionLeft) {
		t.Fatal("new frame should be empty")
	}

	f.Set(ActionLeft)
	f.Set(ActionLeft)
	f.Set(ActionRotate)

	if got := f.Count(ActionLeft); got != 2 {
		t.Errorf("Count(Left) = %d, expected 2", got)
	}
	if !f.Has(ActionRotate) {
		t.Error("Has(Rotate) should be true")
	}

	clone := f.Clone()
	f.Clear()
	if f.Has(ActionLeft) {
		t.Error("Clear should remove all actions")
	}
	if clone.Count(ActionLeft) != 2 {
		t.Error("Clone should not be affected by Clear")
	}
}

func TestInputFrameZeroValue(t *testing.T) {
	var f InputFrame
	if f.Has(ActionPause) {
		t.Error("zero frame should report no actions")
	}
	f.Set(ActionPause)
	if !f.Has(ActionPause) {
		t.Error("Set on zero frame should allocate")
	}
}

func TestActionString(t *testing.T) {
	tests := map[Action]string{
		ActionNone:     "None",
		ActionLeft:     "Left",
		ActionHardDrop: "HardDrop",
		ActionQuit:     "Quit",
		Action(99):     "Unknown",
	}
	for a, want := range tests {
		if a.String() != want {
			t.Errorf("%d.String() = %q, expected %q", int(a), a.String(), want)
		}
	}
}
