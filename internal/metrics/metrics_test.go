package metrics

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hamiltonlab/bluebook/internal/providers"
)

func TestRecorderRecordLLMCall(t *testing.T) {
	rec := NewRecorder()

	rec.RecordLLMCall(RecordOpts{
		RunID:   "run-1",
		Stage:   "extract",
		ItemKey: "FRANCE",
		Year:    "2013",
	}, &providers.ChatResult{
		Provider:         "openai",
		ModelUsed:        "gpt-4o-2024-08-06",
		PromptTokens:     100,
		CompletionTokens: 20,
		TotalTokens:      120,
		CostUSD:          0.0005,
		ExecutionTime:    1500 * time.Millisecond,
		Success:          true,
	})

	metrics := rec.List()
	if len(metrics) != 1 {
		t.Fatalf("List() returned %d metrics, want 1", len(metrics))
	}

	m := metrics[0]
	if m.RunID != "run-1" || m.Stage != "extract" || m.ItemKey != "FRANCE" || m.Year != "2013" {
		t.Errorf("attribution not carried: %+v", m)
	}
	if m.Model != "gpt-4o-2024-08-06" {
		t.Errorf("Model = %q, want gpt-4o-2024-08-06", m.Model)
	}
	if m.TotalTokens != 120 {
		t.Errorf("TotalTokens = %d, want 120", m.TotalTokens)
	}
	if m.ExecutionSeconds != 1.5 {
		t.Errorf("ExecutionSeconds = %v, want 1.5", m.ExecutionSeconds)
	}
	if !m.Success {
		t.Error("Success = false, want true")
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestRecorderNilSafe(t *testing.T) {
	var rec *Recorder

	// None of these should panic.
	rec.Record(Metric{Stage: "extract"})
	rec.RecordLLMCall(RecordOpts{}, &providers.ChatResult{})
	rec.RecordCount(RecordOpts{Stage: "segment"}, 5)
	rec.RecordError(RecordOpts{}, providers.ErrorTypeAPI, time.Second)

	if got := rec.List(); got != nil {
		t.Errorf("List() on nil recorder = %v, want nil", got)
	}
	if s := rec.Summary(); s.Count != 0 {
		t.Errorf("Summary().Count = %d, want 0", s.Count)
	}
}

func TestRecorderConcurrent(t *testing.T) {
	rec := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				rec.Record(Metric{Stage: "extract", Success: true})
			}
		}()
	}
	wg.Wait()

	if got := len(rec.List()); got != 200 {
		t.Errorf("recorded %d metrics, want 200", got)
	}
}

func TestSummarize(t *testing.T) {
	metrics := []Metric{
		{CostUSD: 0.001, TotalTokens: 100, ExecutionSeconds: 1, Success: true},
		{CostUSD: 0.003, TotalTokens: 300, ExecutionSeconds: 3, Success: true},
		{ExecutionSeconds: 2, Success: false, ErrorType: providers.ErrorTypeRateLimit},
	}

	s := Summarize(metrics)
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.SuccessCount != 2 || s.ErrorCount != 1 {
		t.Errorf("SuccessCount/ErrorCount = %d/%d, want 2/1", s.SuccessCount, s.ErrorCount)
	}
	if math.Abs(s.TotalCostUSD-0.004) > 1e-12 {
		t.Errorf("TotalCostUSD = %v, want 0.004", s.TotalCostUSD)
	}
	if s.TotalTokens != 400 {
		t.Errorf("TotalTokens = %d, want 400", s.TotalTokens)
	}
	if s.TotalTime != 6*time.Second {
		t.Errorf("TotalTime = %v, want 6s", s.TotalTime)
	}
	if math.Abs(s.AvgTimeSeconds-2) > 1e-9 {
		t.Errorf("AvgTimeSeconds = %v, want 2", s.AvgTimeSeconds)
	}
}

func TestComputeDetailedStats(t *testing.T) {
	var metrics []Metric
	for i := 1; i <= 100; i++ {
		metrics = append(metrics, Metric{
			ExecutionSeconds: float64(i),
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
			CostUSD:          0.01,
			Success:          true,
		})
	}

	stats := ComputeDetailedStats(metrics)
	if stats.Count != 100 {
		t.Fatalf("Count = %d, want 100", stats.Count)
	}
	if stats.LatencyMin != 1 || stats.LatencyMax != 100 {
		t.Errorf("LatencyMin/Max = %v/%v, want 1/100", stats.LatencyMin, stats.LatencyMax)
	}
	if math.Abs(stats.LatencyAvg-50.5) > 1e-9 {
		t.Errorf("LatencyAvg = %v, want 50.5", stats.LatencyAvg)
	}
	// P50 of 1..100 interpolates between 50 and 51.
	if math.Abs(stats.LatencyP50-50.5) > 1e-9 {
		t.Errorf("LatencyP50 = %v, want 50.5", stats.LatencyP50)
	}
	if stats.LatencyP95 < 95 || stats.LatencyP95 > 96 {
		t.Errorf("LatencyP95 = %v, want in [95,96]", stats.LatencyP95)
	}
	if stats.TotalPromptTokens != 1000 || stats.TotalCompletionTokens != 500 {
		t.Errorf("token totals = %d/%d, want 1000/500",
			stats.TotalPromptTokens, stats.TotalCompletionTokens)
	}
	if math.Abs(stats.AvgTotalTokens-15) > 1e-9 {
		t.Errorf("AvgTotalTokens = %v, want 15", stats.AvgTotalTokens)
	}
}

func TestComputeDetailedStatsEmpty(t *testing.T) {
	stats := ComputeDetailedStats(nil)
	if stats.Count != 0 {
		t.Errorf("Count = %d, want 0", stats.Count)
	}
	if stats.LatencyP50 != 0 {
		t.Errorf("LatencyP50 = %v, want 0", stats.LatencyP50)
	}
}

func TestStatsByStage(t *testing.T) {
	metrics := []Metric{
		{Stage: "extract", CostUSD: 0.01, Success: true, ExecutionSeconds: 1},
		{Stage: "extract", CostUSD: 0.02, Success: false, ExecutionSeconds: 2},
		{Stage: "tables", CostUSD: 0.05, Success: true, ExecutionSeconds: 5},
		{Success: true}, // no stage, skipped
	}

	byStage := StatsByStage(metrics)
	if len(byStage) != 2 {
		t.Fatalf("StatsByStage() returned %d stages, want 2", len(byStage))
	}

	extract := byStage["extract"]
	if extract == nil || extract.Count != 2 {
		t.Fatalf("extract stats = %+v, want Count 2", extract)
	}
	if extract.SuccessCount != 1 || extract.ErrorCount != 1 {
		t.Errorf("extract Success/Error = %d/%d, want 1/1", extract.SuccessCount, extract.ErrorCount)
	}
	if math.Abs(extract.TotalCostUSD-0.03) > 1e-12 {
		t.Errorf("extract TotalCostUSD = %v, want 0.03", extract.TotalCostUSD)
	}

	tables := byStage["tables"]
	if tables == nil || tables.Count != 1 {
		t.Fatalf("tables stats = %+v, want Count 1", tables)
	}
	if tables.LatencyP50 != 5 {
		t.Errorf("tables LatencyP50 = %v, want 5", tables.LatencyP50)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{50, 3},
		{100, 5},
		{25, 2},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(empty) = %v, want 0", got)
	}
	if got := percentile([]float64{7}, 99); got != 7 {
		t.Errorf("percentile(single) = %v, want 7", got)
	}
}
