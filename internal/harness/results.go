package harness

import (
	"errors"
	"sort"
)

// ErrAmbiguousSelection reports that the selection rule could not break a tie
// between models; the harness reports the ambiguity rather than picking
// arbitrarily.
var ErrAmbiguousSelection = errors.New("model selection is ambiguous")

// Summarize groups outcomes by model and reduces each group to its summary.
// Re-running it on the same outcome collection yields identical summaries.
func Summarize(outcomes []RunOutcome) map[string]ModelSummary {
	byModel := map[string][]RunOutcome{}
	for _, o := range outcomes {
		byModel[o.Model] = append(byModel[o.Model], o)
	}

	out := make(map[string]ModelSummary, len(byModel))
	for model, rows := range byModel {
		var latencies []float64
		var tps []float64
		passCount := 0
		agentTotal := 0
		agentToolOK := 0

		for _, r := range rows {
			latencies = append(latencies, float64(r.LatencyMillis))
			if r.OK {
				passCount++
			}
			if r.TokensPerSec != nil {
				tps = append(tps, *r.TokensPerSec)
			}
			if r.Mode == ModeAgent {
				agentTotal++
				if r.ToolUsed && r.ToolCall != nil && r.ToolCall.Error == "" {
					agentToolOK++
				}
			}
		}

		ms := ModelSummary{
			Model:               model,
			PassCount:           passCount,
			Total:               len(rows),
			PassRate:            float64(passCount) / float64(len(rows)),
			AvgLatencyMillis:    mean(latencies),
			MedianLatencyMillis: quantile(latencies, 0.50),
			P95LatencyMillis:    quantile(latencies, 0.95),
			AvgTokensPerSec:     mean(tps),
		}
		if agentTotal > 0 {
			ms.ToolSuccessRate = float64(agentToolOK) / float64(agentTotal)
		}
		out[model] = ms
	}
	return out
}

// Select applies the selection rule: among models with the highest pass rate,
// pick the lowest average latency; break ties by highest average token
// throughput; if still tied, return ErrAmbiguousSelection.
func Select(summaries map[string]ModelSummary) (string, error) {
	if len(summaries) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(summaries))
	for name := range summaries {
		names = append(names, name)
	}
	sort.Strings(names)

	maxPass := summaries[names[0]].PassRate
	for _, n := range names[1:] {
		if summaries[n].PassRate > maxPass {
			maxPass = summaries[n].PassRate
		}
	}
	cands := filterSummaries(names, func(s ModelSummary) bool { return s.PassRate == maxPass }, summaries)

	minLat := summaries[cands[0]].AvgLatencyMillis
	for _, n := range cands[1:] {
		if summaries[n].AvgLatencyMillis < minLat {
			minLat = summaries[n].AvgLatencyMillis
		}
	}
	cands = filterSummaries(cands, func(s ModelSummary) bool { return s.AvgLatencyMillis == minLat }, summaries)

	maxTPS := summaries[cands[0]].AvgTokensPerSec
	for _, n := range cands[1:] {
		if summaries[n].AvgTokensPerSec > maxTPS {
			maxTPS = summaries[n].AvgTokensPerSec
		}
	}
	cands = filterSummaries(cands, func(s ModelSummary) bool { return s.AvgTokensPerSec == maxTPS }, summaries)

	if len(cands) != 1 {
		return "", ErrAmbiguousSelection
	}
	return cands[0], nil
}

func filterSummaries(names []string, keep func(ModelSummary) bool, summaries map[string]ModelSummary) []string {
	out := names[:0:0]
	for _, n := range names {
		if keep(summaries[n]) {
			out = append(out, n)
		}
	}
	return out
}
