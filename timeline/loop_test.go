package timeline

import "testing"

func runLoop(ticks []float64, playing bool, region TrimRegion) []float64 {
	var l Loop
	var seeks []float64
	for _, tick := range ticks {
		if target, ok := l.Tick(tick, playing, region); ok {
			seeks = append(seeks, target)
		}
	}
	return seeks
}

func TestLoopFiresOnCrossing(t *testing.T) {
	region := TrimRegion{StartMs: 1200, EndMs: 5000, LoopEnabled: true}
	seeks := runLoop([]float64{4990, 5010}, true, region)
	if len(seeks) != 1 || seeks[0] != 1200 {
		t.Fatalf("seeks = %v", seeks)
	}
}

func TestLoopIgnoresTicksAlreadyPastEnd(t *testing.T) {
	region := TrimRegion{StartMs: 0, EndMs: 5000, LoopEnabled: true}
	if seeks := runLoop([]float64{5010, 5020}, true, region); len(seeks) != 0 {
		t.Fatalf("seeks = %v", seeks)
	}
}

func TestLoopLandingExactlyOnEnd(t *testing.T) {
	region := TrimRegion{StartMs: 0, EndMs: 5000, LoopEnabled: true}
	seeks := runLoop([]float64{4980, 5000, 5020}, true, region)
	if len(seeks) != 1 {
		t.Fatalf("seeks = %v", seeks)
	}
}

func TestLoopRequiresPlayingAndEnabled(t *testing.T) {
	region := TrimRegion{StartMs: 0, EndMs: 5000, LoopEnabled: true}
	if seeks := runLoop([]float64{4990, 5010}, false, region); len(seeks) != 0 {
		t.Fatalf("paused seeks = %v", seeks)
	}
	region.LoopEnabled = false
	if seeks := runLoop([]float64{4990, 5010}, true, region); len(seeks) != 0 {
		t.Fatalf("disabled seeks = %v", seeks)
	}
}

func TestLoopFiresEachPass(t *testing.T) {
	region := TrimRegion{StartMs: 1000, EndMs: 2000, LoopEnabled: true}
	// player honours each seek back to 1000
	ticks := []float64{1900, 2010, 1000, 1500, 1990, 2005, 1000}
	seeks := runLoop(ticks, true, region)
	if len(seeks) != 2 {
		t.Fatalf("seeks = %v", seeks)
	}
}

func TestLoopFirstTickNeverFires(t *testing.T) {
	region := TrimRegion{StartMs: 0, EndMs: 5000, LoopEnabled: true}
	var l Loop
	if _, ok := l.Tick(6000, true, region); ok {
		t.Fatal("fired without a previous tick")
	}
	l.Reset()
	if _, ok := l.Tick(4000, true, region); ok {
		t.Fatal("fired after reset")
	}
}
