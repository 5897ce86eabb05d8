package observe

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/detagtor/detagtor/internal/fingerprint"
)

// State classifies the outcome of one path retrieval.
type State int

const (
	// Unobserved means the path was attempted but yielded no usable
	// content: transport failure, timeout, non-success status or
	// cancellation. Neutral evidence for the matcher.
	Unobserved State = iota
	// Observed means the content was retrieved and fingerprinted.
	Observed
)

// Observation is the tri-state retrieval result for one path. Paths that
// were never attempted are simply absent from a Set, which keeps
// "not attempted" distinguishable from "attempted and failed".
type Observation struct {
	State       State
	Fingerprint fingerprint.Fingerprint
}

// Set maps a canonical index path to its observation.
type Set map[string]Observation

// Observed counts the observations that carry a fingerprint.
func (s Set) Observed() int {
	n := 0
	for _, obs := range s {
		if obs.State == Observed {
			n++
		}
	}
	return n
}

// RewriteRule rewrites a request path before retrieval. Deployments often
// serve a file under a different path than the repository stores it;
// observations are still recorded under the canonical index path.
type RewriteRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Options tunes a Collector.
type Options struct {
	// Concurrency bounds in-flight retrievals. Minimum 1.
	Concurrency int
	// RequestsPerSecond throttles retrievals; 0 disables throttling.
	RequestsPerSecond float64
	// Headers are added to every request.
	Headers map[string]string
	// Rewrites are applied to the request path, first match wins.
	Rewrites []RewriteRule
}

// Collector retrieves remote files and fingerprints their content. The
// per-request timeout and TLS behavior come from the resty client.
type Collector struct {
	logger  hclog.Logger
	client  *resty.Client
	limiter *rate.Limiter
	opts    Options
}

// NewCollector builds a Collector around an already configured client.
func NewCollector(logger hclog.Logger, client *resty.Client, opts Options) *Collector {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return &Collector{logger: logger, client: client, limiter: limiter, opts: opts}
}

// Collect retrieves every path relative to baseURL. Every requested path
// is present in the returned set; paths whose retrieval failed, returned
// a non-success status or was cancelled are recorded as Unobserved.
// Cancelling ctx stops issuing new requests and finalizes the remaining
// paths as Unobserved.
func (c *Collector) Collect(ctx context.Context, baseURL string, paths []string) (Set, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	set := make(Set, len(paths))
	var mu sync.Mutex
	var wg sync.WaitGroup
	guard := make(chan struct{}, c.opts.Concurrency)

	for _, path := range paths {
		if ctx.Err() != nil {
			mu.Lock()
			set[path] = Observation{State: Unobserved}
			mu.Unlock()
			continue
		}

		guard <- struct{}{}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-guard }()

			obs := c.fetch(ctx, base, path)
			mu.Lock()
			set[path] = obs
			mu.Unlock()
		}(path)
	}
	wg.Wait()

	return set, nil
}

// CollectBatches retrieves paths in concurrency-sized batches and calls
// stop on the accumulated set between batches; once stop returns true no
// further paths are attempted. Paths of batches never begun stay absent
// from the returned set.
func (c *Collector) CollectBatches(ctx context.Context, baseURL string, paths []string, stop func(Set) bool) (Set, error) {
	set := make(Set, len(paths))
	for start := 0; start < len(paths); start += c.opts.Concurrency {
		end := start + c.opts.Concurrency
		if end > len(paths) {
			end = len(paths)
		}

		batch, err := c.Collect(ctx, baseURL, paths[start:end])
		if err != nil {
			return nil, err
		}
		for path, obs := range batch {
			set[path] = obs
		}

		if ctx.Err() != nil || (stop != nil && stop(set)) {
			break
		}
	}
	return set, nil
}

// fetch retrieves one path and classifies the outcome. Retrieval errors
// are data, not failures: anything that goes wrong becomes Unobserved.
func (c *Collector) fetch(ctx context.Context, base *url.URL, path string) Observation {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Observation{State: Unobserved}
		}
	}

	ref, err := url.Parse(c.rewrite(path))
	if err != nil {
		c.logger.Warn("skipping unparseable path", "path", path, "error", err)
		return Observation{State: Unobserved}
	}
	target := base.ResolveReference(ref).String()

	req := c.client.R().SetContext(ctx)
	for k, v := range c.opts.Headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Get(target)
	if err != nil {
		c.logger.Debug("retrieval failed", "url", target, "error", err)
		return Observation{State: Unobserved}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		c.logger.Debug("non-success status", "url", target, "status", resp.StatusCode())
		return Observation{State: Unobserved}
	}

	fp := fingerprint.Sum(resp.Body())
	c.logger.Debug("file observed", "path", path, "fingerprint", fp)
	return Observation{State: Observed, Fingerprint: fp}
}

// rewrite applies the first matching rewrite rule to the request path.
func (c *Collector) rewrite(path string) string {
	for _, rule := range c.opts.Rewrites {
		if rule.Pattern.MatchString(path) {
			return rule.Pattern.ReplaceAllString(path, rule.Replacement)
		}
	}
	return path
}
