package profiling

import (
	"testing"
	"time"
)

func TestTrackAndReset(t *testing.T) {
	ResetFrame()
	Track("meshing.Build")()
	Track("meshing.Build")()
	Track("surface.Render")()

	snap := Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot: got %d names, want 2", len(snap))
	}
	if SumWithPrefix("meshing.") != snap["meshing.Build"] {
		t.Fatalf("SumWithPrefix mismatch: got %v, want %v", SumWithPrefix("meshing."), snap["meshing.Build"])
	}
	if SumWithPrefix("nothing.") != 0 {
		t.Fatal("SumWithPrefix matched an unknown prefix")
	}

	ResetFrame()
	if len(Snapshot()) != 0 {
		t.Fatal("ResetFrame left entries behind")
	}
}

func TestFormatMs(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{0, "0ms"},
		{4, "4ms"},
		{4.25, "4.2ms"},
		{12.5, "12.5ms"},
	}
	for _, tt := range tests {
		if got := formatMs(tt.ms); got != tt.want {
			t.Errorf("formatMs(%v): got %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestTopNOrder(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["a"] = 2 * time.Millisecond
	frameTotals["b"] = 5 * time.Millisecond
	frameTotals["c"] = time.Millisecond
	mu.Unlock()

	if got := TopN(2); got != "b:5ms, a:2ms" {
		t.Fatalf("TopN(2): got %q", got)
	}
	ResetFrame()
}
