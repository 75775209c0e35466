package indicators

import (
	"context"
	"math"
	"testing"
)

func TestEngineCalculateAll(t *testing.T) {
	engine := NewEngine(2)
	engine.RegisterIndicator(NewSMA(3))
	engine.RegisterIndicator(NewEMA(5))
	engine.RegisterMultiIndicator(NewMACD(12, 26, 9))
	engine.RegisterVolumeIndicator(NewVolumeSMA(3))

	closes := make([]float64, 40)
	volumes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + math.Cos(float64(i)/3)*5
		volumes[i] = float64(1000 + i)
	}
	candles := candlesFromCloses(closes...)

	result, err := engine.CalculateAll(context.Background(), candles, volumes)
	if err != nil {
		t.Fatalf("CalculateAll failed: %v", err)
	}

	for _, name := range []string{"SMA_3", "EMA_5", "MAVOL_3"} {
		if _, ok := result.Single[name]; !ok {
			t.Errorf("missing single-value result %q", name)
		}
	}
	if _, ok := result.Multi["MACD_12_26_9"]; !ok {
		t.Errorf("missing multi-value result, have %v", result.Multi)
	}
}

func TestEngineSkipsFailingIndicators(t *testing.T) {
	engine := NewEngine(2)
	engine.RegisterIndicator(NewSMA(3))
	// Needs more data than we provide; its result is simply absent.
	engine.RegisterIndicator(NewSMA(100))

	candles := candlesFromCloses(1, 2, 3, 4, 5)
	volumes := []float64{1, 1, 1, 1, 1}

	result, err := engine.CalculateAll(context.Background(), candles, volumes)
	if err != nil {
		t.Fatalf("CalculateAll failed: %v", err)
	}
	if _, ok := result.Single["SMA_3"]; !ok {
		t.Error("expected SMA_3 result")
	}
	if _, ok := result.Single["SMA_100"]; ok {
		t.Error("SMA_100 should be absent, not partial")
	}
}

func TestEngineUnregister(t *testing.T) {
	engine := NewEngine(1)
	engine.RegisterIndicator(NewSMA(3))
	engine.RegisterIndicator(NewRSI(14))
	engine.Unregister("SMA_3")

	names := engine.ListIndicators()
	for _, name := range names {
		if name == "SMA_3" {
			t.Error("SMA_3 still registered after Unregister")
		}
	}
}

func TestBuildEngineRegistersEnabledOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RSI.Enabled = true
	cfg.MACD.Enabled = true

	engine := BuildEngine(2, cfg)
	names := engine.ListIndicators()

	want := map[string]bool{"RSI_14": false, "MACD_12_26_9": false}
	for _, name := range names {
		if _, ok := want[name]; ok {
			want[name] = true
		} else {
			t.Errorf("unexpected indicator registered: %s", name)
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("enabled indicator %s not registered", name)
		}
	}
}
