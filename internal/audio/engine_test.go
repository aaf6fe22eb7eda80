// SPDX-License-Identifier: MIT
package audio

import (
	"sync"
	"testing"

	"spectra/internal/analyzer"
	"spectra/internal/config"
	"spectra/internal/curve"
)

func newAnalysisTestEngine(t *testing.T) *Engine {
	t.Helper()
	return &Engine{
		cfg: &config.Config{
			Audio: config.AudioConfig{
				SampleRate:      testSampleRate,
				FramesPerBuffer: testFrameSize,
			},
			Display: config.DisplayConfig{
				Width:     600,
				Height:    200,
				RefreshHz: 120,
			},
		},
		bounds:   curve.Bounds{Top: 0, Width: 600, Height: 200},
		producer: newTestProducer(t, analyzer.Order2048),
	}
}

func TestStopAnalysisWaitsForLoopExit(t *testing.T) {
	engine := newAnalysisTestEngine(t)
	engine.StartAnalysis()

	// Every concurrent caller must block until the loop goroutine is gone,
	// including the ones that lose the race to signal the stop.
	var callers sync.WaitGroup
	for i := 0; i < 3; i++ {
		callers.Add(1)
		go func() {
			defer callers.Done()
			engine.StopAnalysis()
		}()
	}
	callers.Wait()

	engine.loopMu.Lock()
	stopped := engine.ticker == nil
	engine.loopMu.Unlock()
	if !stopped {
		t.Error("ticker should be cleared after StopAnalysis")
	}

	// The lifecycle must survive a full stop/start cycle.
	engine.StartAnalysis()
	engine.StopAnalysis()
}

func TestStopAnalysisWhenIdleIsNoOp(t *testing.T) {
	engine := newAnalysisTestEngine(t)
	engine.StopAnalysis()
	engine.StopAnalysis()
}

func TestLatestPathCopies(t *testing.T) {
	engine := newAnalysisTestEngine(t)

	if _, ok := engine.LatestPath(); ok {
		t.Error("LatestPath should report no path before the first tick")
	}

	engine.latest = curve.Path{{X: 0, Y: 10}, {X: 5, Y: 20}}
	got, ok := engine.LatestPath()
	if !ok {
		t.Fatal("LatestPath should return the stored path")
	}

	got[0].Y = -1
	if engine.latest[0].Y != 10 {
		t.Error("mutating the returned path must not affect the stored one")
	}
}
