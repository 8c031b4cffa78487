package progress

import (
	"math"
	"testing"
)

// TestParserDurationLine verifies the total duration is extracted from
// the input header.
func TestParserDurationLine(t *testing.T) {
	p := NewParser()
	state, updated := p.Feed("  Duration: 00:02:00.00, start: 0.000000, bitrate: 1000 kb/s")
	if !updated {
		t.Fatal("expected update from duration line")
	}
	if state.TotalDurationSeconds != 120 {
		t.Fatalf("duration = %v, want 120", state.TotalDurationSeconds)
	}
}

// TestParserDurationTakenOnce verifies the second input's duration
// header cannot reset the denominator.
func TestParserDurationTakenOnce(t *testing.T) {
	p := NewParser()
	p.Feed("  Duration: 00:02:00.00, start: 0.000000")
	state, _ := p.Feed("  Duration: 00:00:10.00, start: 0.000000")
	if state.TotalDurationSeconds != 120 {
		t.Fatalf("duration = %v, want 120 (first wins)", state.TotalDurationSeconds)
	}
}

// TestParserStatusLine verifies the recurring status line updates
// elapsed time, frames, speed, and the derived percentage.
func TestParserStatusLine(t *testing.T) {
	p := NewParser()
	p.Feed("  Duration: 00:02:00.00, start: 0.000000")
	state, updated := p.Feed("frame=  500 fps= 25 q=-1.0 size=    2048kB time=00:01:00.00 bitrate= 279.6kbits/s speed=2.01x")
	if !updated {
		t.Fatal("expected update from status line")
	}
	if state.ElapsedSeconds != 60 {
		t.Fatalf("elapsed = %v, want 60", state.ElapsedSeconds)
	}
	if state.FramesProcessed != 500 {
		t.Fatalf("frames = %d, want 500", state.FramesProcessed)
	}
	if math.Abs(state.SpeedMultiplier-2.01) > 1e-9 {
		t.Fatalf("speed = %v, want 2.01", state.SpeedMultiplier)
	}
	if math.Abs(state.Percentage-50) > 1e-9 {
		t.Fatalf("percentage = %v, want 50", state.Percentage)
	}
}

// TestParserPercentageClamped verifies elapsed beyond the total clamps
// at 100.
func TestParserPercentageClamped(t *testing.T) {
	p := NewParser()
	p.Feed("  Duration: 00:01:00.00, start: 0.000000")
	state, _ := p.Feed("frame=  900 time=00:01:30.00 speed=1.0x")
	if state.Percentage != 100 {
		t.Fatalf("percentage = %v, want 100", state.Percentage)
	}
}

// TestParserPercentageNeverRegresses verifies a smaller elapsed value
// later in the stream keeps the high-water percentage.
func TestParserPercentageNeverRegresses(t *testing.T) {
	p := NewParser()
	p.Feed("  Duration: 00:02:00.00, start: 0.000000")
	p.Feed("frame=  500 time=00:01:30.00 speed=1.0x")
	state, _ := p.Feed("frame=  510 time=00:00:30.00 speed=1.0x")
	if math.Abs(state.Percentage-75) > 1e-9 {
		t.Fatalf("percentage = %v, want 75 (high-water mark)", state.Percentage)
	}
}

// TestParserMalformedLineIsNoOp verifies unmatched lines leave state
// untouched and report no update.
func TestParserMalformedLineIsNoOp(t *testing.T) {
	p := NewParser()
	p.Feed("  Duration: 00:02:00.00, start: 0.000000")
	before := p.State()

	state, updated := p.Feed("Press [q] to stop, [?] for help")
	if updated {
		t.Fatal("expected no update from malformed line")
	}
	if state != before {
		t.Fatalf("state changed on malformed line: %+v -> %+v", before, state)
	}
}

// TestParserStatusBeforeDuration verifies elapsed-only updates leave
// the percentage at zero until the denominator is known.
func TestParserStatusBeforeDuration(t *testing.T) {
	p := NewParser()
	state, updated := p.Feed("frame=  100 time=00:00:10.00 speed=1.0x")
	if !updated {
		t.Fatal("expected update from status line")
	}
	if state.Percentage != 0 {
		t.Fatalf("percentage = %v, want 0 before duration is known", state.Percentage)
	}
}
