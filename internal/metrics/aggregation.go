package metrics

import (
	"sort"
	"time"
)

// Summary provides a summary of a set of metrics.
type Summary struct {
	Count          int           `json:"count"`
	TotalCostUSD   float64       `json:"total_cost_usd"`
	TotalTokens    int           `json:"total_tokens"`
	TotalTime      time.Duration `json:"total_time"`
	SuccessCount   int           `json:"success_count"`
	ErrorCount     int           `json:"error_count"`
	AvgCostUSD     float64       `json:"avg_cost_usd"`
	AvgTokens      float64       `json:"avg_tokens"`
	AvgTimeSeconds float64       `json:"avg_time_seconds"`
}

// Summarize aggregates the given metrics into a summary.
func Summarize(metrics []Metric) *Summary {
	s := &Summary{Count: len(metrics)}
	for _, m := range metrics {
		s.TotalCostUSD += m.CostUSD
		s.TotalTokens += m.TotalTokens
		s.TotalTime += time.Duration(m.ExecutionSeconds * float64(time.Second))
		if m.Success {
			s.SuccessCount++
		} else {
			s.ErrorCount++
		}
	}

	if s.Count > 0 {
		s.AvgCostUSD = s.TotalCostUSD / float64(s.Count)
		s.AvgTokens = float64(s.TotalTokens) / float64(s.Count)
		s.AvgTimeSeconds = s.TotalTime.Seconds() / float64(s.Count)
	}

	return s
}

// DetailedStats provides comprehensive statistics including percentiles and token breakdowns.
type DetailedStats struct {
	// Basic counts
	Count        int `json:"count"`
	SuccessCount int `json:"success_count"`
	ErrorCount   int `json:"error_count"`

	// Cost
	TotalCostUSD float64 `json:"total_cost_usd"`
	AvgCostUSD   float64 `json:"avg_cost_usd"`

	// Latency percentiles (seconds)
	LatencyP50 float64 `json:"latency_p50"`
	LatencyP95 float64 `json:"latency_p95"`
	LatencyP99 float64 `json:"latency_p99"`
	LatencyAvg float64 `json:"latency_avg"`
	LatencyMin float64 `json:"latency_min"`
	LatencyMax float64 `json:"latency_max"`

	// Token stats
	TotalPromptTokens     int `json:"total_prompt_tokens"`
	TotalCompletionTokens int `json:"total_completion_tokens"`
	TotalTokens           int `json:"total_tokens"`

	// Average tokens per call
	AvgPromptTokens     float64 `json:"avg_prompt_tokens"`
	AvgCompletionTokens float64 `json:"avg_completion_tokens"`
	AvgTotalTokens      float64 `json:"avg_total_tokens"`
}

// ComputeDetailedStats returns detailed statistics including latency percentiles and token breakdowns.
func ComputeDetailedStats(metrics []Metric) *DetailedStats {
	stats := &DetailedStats{Count: len(metrics)}
	if len(metrics) == 0 {
		return stats
	}

	// Collect latencies for percentile calculation
	var latencies []float64

	for _, m := range metrics {
		stats.TotalCostUSD += m.CostUSD

		if m.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}

		stats.TotalPromptTokens += m.PromptTokens
		stats.TotalCompletionTokens += m.CompletionTokens
		stats.TotalTokens += m.TotalTokens

		if m.ExecutionSeconds > 0 {
			latencies = append(latencies, m.ExecutionSeconds)
		}
	}

	// Calculate averages
	count := float64(stats.Count)
	stats.AvgCostUSD = stats.TotalCostUSD / count
	stats.AvgPromptTokens = float64(stats.TotalPromptTokens) / count
	stats.AvgCompletionTokens = float64(stats.TotalCompletionTokens) / count
	stats.AvgTotalTokens = float64(stats.TotalTokens) / count

	// Calculate latency percentiles
	if len(latencies) > 0 {
		sort.Float64s(latencies)

		stats.LatencyMin = latencies[0]
		stats.LatencyMax = latencies[len(latencies)-1]

		var sum float64
		for _, l := range latencies {
			sum += l
		}
		stats.LatencyAvg = sum / float64(len(latencies))

		stats.LatencyP50 = percentile(latencies, 50)
		stats.LatencyP95 = percentile(latencies, 95)
		stats.LatencyP99 = percentile(latencies, 99)
	}

	return stats
}

// StatsByStage returns detailed stats grouped by stage. Metrics without a
// stage are skipped.
func StatsByStage(metrics []Metric) map[string]*DetailedStats {
	byStage := make(map[string][]Metric)
	for _, m := range metrics {
		if m.Stage != "" {
			byStage[m.Stage] = append(byStage[m.Stage], m)
		}
	}

	result := make(map[string]*DetailedStats)
	for stage, stageMetrics := range byStage {
		result[stage] = ComputeDetailedStats(stageMetrics)
	}

	return result
}

// percentile calculates the p-th percentile from a sorted slice of values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Calculate the index
	n := float64(len(sorted))
	idx := (p / 100.0) * (n - 1)

	// Interpolate between floor and ceil indices
	lower := int(idx)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// Linear interpolation
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
