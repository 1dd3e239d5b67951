package harness

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/agentbench/agentbench/internal/backend"
)

// timedSend wraps one backend exchange with a monotonic timer and the
// per-request timeout. The elapsed duration is reported on error paths too.
func timedSend(ctx context.Context, b backend.Backend, req backend.Request, timeout time.Duration) (backend.Response, time.Duration, error) {
	sendCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := b.Send(sendCtx, req)
	return resp, time.Since(start), err
}

// TokensPerSec derives token throughput from reported usage. It returns nil
// when the backend reported no output token count or when the measured
// latency rounds to zero; a rate is never fabricated from missing metadata.
func TokensPerSec(tokensOut *int, latency time.Duration) *float64 {
	if tokensOut == nil {
		return nil
	}
	ms := latency.Milliseconds()
	if ms <= 0 {
		return nil
	}
	rate := float64(*tokensOut) / (float64(ms) / 1000.0)
	return &rate
}

// quantile returns the q-quantile (0..1) of a slice using linear
// interpolation between ranked samples at position q*(n-1). Copy-safe.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	cp := slices.Clone(values)
	slices.Sort(cp)
	if q <= 0 {
		return cp[0]
	}
	if q >= 1 {
		return cp[len(cp)-1]
	}
	pos := q * float64(len(cp)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return cp[l]
	}
	frac := pos - float64(l)
	return cp[l]*(1-frac) + cp[r]*frac
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
