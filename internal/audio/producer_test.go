// SPDX-License-Identifier: MIT
package audio

import (
	"testing"

	"spectra/internal/analyzer"
	"spectra/internal/curve"
	"spectra/pkg/utils"
)

const (
	testSampleRate = 44100.0
	testFrameSize  = 512
)

var testBounds = curve.Bounds{Top: 0, Width: 600, Height: 200}

func newTestProducer(t *testing.T, order analyzer.Order) *PathProducer {
	t.Helper()
	p, err := NewPathProducer(order, analyzer.BlackmanHarris, analyzer.DefaultFloorDB)
	if err != nil {
		t.Fatalf("NewPathProducer: %v", err)
	}
	return p
}

func feedSine(p *PathProducer, numSamples int) {
	signal := utils.GenerateSineWave(numSamples, testSampleRate, 1000)
	for off := 0; off < len(signal); off += testFrameSize {
		end := off + testFrameSize
		if end > len(signal) {
			end = len(signal)
		}
		p.Update(signal[off:end])
	}
}

func TestProcessWithNoDataIsNoOp(t *testing.T) {
	p := newTestProducer(t, analyzer.Order2048)

	if p.Process(testBounds, testSampleRate) {
		t.Error("Process with no queued windows should report no refresh")
	}
	if _, ok := p.Path(); ok {
		t.Error("Path should be unavailable before any window completes")
	}
}

func TestEndToEndPathProduction(t *testing.T) {
	p := newTestProducer(t, analyzer.Order2048)

	// One full window plus change; exactly one complete window queued.
	feedSine(p, 2048+100)

	if !p.Process(testBounds, testSampleRate) {
		t.Fatal("Process should refresh the path after a full window")
	}
	path, ok := p.Path()
	if !ok {
		t.Fatal("Path should be available after Process")
	}

	// Bin 0 anchors the left edge; every 2nd bin of 1024 follows. All
	// values are finite (floored), so no points are skipped.
	wantPoints := 1 + 1024/2
	if len(path) != wantPoints {
		t.Errorf("path has %d points, want %d", len(path), wantPoints)
	}
	for i := 1; i < len(path); i++ {
		if path[i].X < path[i-1].X {
			t.Fatalf("x decreased at point %d: %v -> %v", i, path[i-1].X, path[i].X)
		}
	}

	// Nothing left queued once Process has drained the pipeline.
	if got := p.PendingPaths(); got != 0 {
		t.Errorf("PendingPaths = %d, want 0 after drain", got)
	}
}

func TestProcessKeepsNewestPath(t *testing.T) {
	p := newTestProducer(t, analyzer.Order2048)

	// Three complete windows: the held path must come from the newest.
	feedSine(p, 2048*3)
	if !p.Process(testBounds, testSampleRate) {
		t.Fatal("Process should refresh the path")
	}

	// A second Process with no new input must not invalidate the path.
	if p.Process(testBounds, testSampleRate) {
		t.Error("Process with no new windows should not report a refresh")
	}
	if _, ok := p.Path(); !ok {
		t.Error("held path should survive an idle Process call")
	}
}

func TestChangeOrderResetsPipeline(t *testing.T) {
	p := newTestProducer(t, analyzer.Order2048)
	feedSine(p, 2048*2)
	p.Process(testBounds, testSampleRate)

	p.ChangeOrder(analyzer.Order4096)

	if p.Order() != analyzer.Order4096 {
		t.Errorf("order after ChangeOrder = %v, want %v", p.Order(), analyzer.Order4096)
	}
	if _, ok := p.Path(); ok {
		t.Error("held path should be invalidated by ChangeOrder")
	}
	if p.Process(testBounds, testSampleRate) {
		t.Error("Process right after ChangeOrder should find an empty pipeline")
	}

	// A 2048-sample feed no longer completes a window at order 4096.
	feedSine(p, 2048)
	if p.Process(testBounds, testSampleRate) {
		t.Error("half a window should not produce a path")
	}
	feedSine(p, 2048)
	if !p.Process(testBounds, testSampleRate) {
		t.Error("a full 4096 window should produce a path")
	}
}

func TestChangeOrderIgnoresInvalid(t *testing.T) {
	p := newTestProducer(t, analyzer.Order2048)
	p.ChangeOrder(analyzer.Order(5))
	if p.Order() != analyzer.Order2048 {
		t.Errorf("invalid ChangeOrder mutated order to %v", p.Order())
	}
}

func TestUpdateHotPath(t *testing.T) {
	p := newTestProducer(t, analyzer.Order2048)
	block := make([]float64, testFrameSize)

	p.Update(block) // warm-up
	allocs := testing.AllocsPerRun(100, func() {
		p.Update(block)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Update hot path, got %.1f", allocs)
	}
}

func BenchmarkProducerProcess(b *testing.B) {
	p, err := NewPathProducer(analyzer.Order2048, analyzer.BlackmanHarris, analyzer.DefaultFloorDB)
	if err != nil {
		b.Fatalf("NewPathProducer: %v", err)
	}
	window := utils.GenerateComplexWave(2048, testSampleRate)

	b.ReportAllocs()

	for bi := 0; bi < b.N; bi++ {
		p.Update(window)
		p.Process(testBounds, testSampleRate)
	}
}
