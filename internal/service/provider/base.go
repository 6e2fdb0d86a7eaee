// Package provider holds one adapter per upstream market-data API. Each adapter maps its
// provider's JSON shape onto models.CurrentStats and models.PricePoint and reports
// failures as errors; degrading to zero values is the gateway's job.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	drepo "YieldProjector/internal/domain/repository"
	xhttp "YieldProjector/pkg/http"

	"golang.org/x/time/rate"
)

const (
	opStats   = "stats"
	opPools   = "pools"
	opHistory = "history"
)

// upstream is the transport shared by all adapters: base URL, throttle, metrics.
type upstream struct {
	name    string
	baseURL string
	client  *xhttp.Client
	limiter *rate.Limiter
	metrics drepo.Metrics
	headers map[string]string
}

func newUpstream(name, baseURL string, client *xhttp.Client, ratePerSec float64, burst int, m drepo.Metrics) upstream {
	if m == nil {
		m = drepo.NopMetrics{}
	}
	if client == nil {
		client = xhttp.NewClient()
	}
	return upstream{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: newLimiter(ratePerSec, burst),
		metrics: m,
		headers: map[string]string{},
	}
}

func newLimiter(ratePerSec float64, burst int) *rate.Limiter {
	if ratePerSec <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(ratePerSec), burst)
}

// get waits for the provider quota, performs the call and records metrics.
func (u *upstream) get(ctx context.Context, op, path string, query map[string][]string) ([]byte, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		u.metrics.RecordProviderError(u.name, op)
		return nil, fmt.Errorf("%s %s: rate wait: %w", u.name, op, err)
	}

	start := time.Now()
	u.metrics.RecordProviderRequest(u.name, op)

	var body []byte
	err := u.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         u.baseURL + path,
		Headers:     u.headers,
		QueryParams: query,
	}, &body)
	u.metrics.RecordLatency(u.name+"_"+op, time.Since(start).Seconds())
	if err != nil {
		u.metrics.RecordProviderError(u.name, op)
		return nil, fmt.Errorf("%s %s: %w", u.name, op, err)
	}
	return body, nil
}
