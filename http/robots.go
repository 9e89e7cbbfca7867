package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/fwojciec/sitescout"
	"github.com/fwojciec/sitescout/robots"
)

// maxRobotsSize is the number of robots.txt bytes considered. Content past
// it is ignored, as major crawlers do.
const maxRobotsSize = 500 << 10

// Ensure RobotsService implements sitescout.RobotsService at compile time.
var _ sitescout.RobotsService = (*RobotsService)(nil)

// ParseFunc turns a robots.txt body into a policy.
type ParseFunc func(r io.Reader) (sitescout.RobotsPolicy, error)

// ParseNative parses robots.txt with the robots package.
func ParseNative(r io.Reader) (sitescout.RobotsPolicy, error) {
	p, err := robots.Parse(r)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RobotsService fetches robots.txt files and caches the parsed policy per
// origin. It is safe for concurrent use.
type RobotsService struct {
	client    *http.Client
	userAgent string
	parse     ParseFunc

	mu    sync.Mutex
	cache map[string]sitescout.RobotsPolicy
}

// RobotsOption configures a RobotsService.
type RobotsOption func(*RobotsService)

// WithParseFunc replaces the robots.txt parser. Defaults to ParseNative.
func WithParseFunc(fn ParseFunc) RobotsOption {
	return func(s *RobotsService) {
		s.parse = fn
	}
}

// WithRobotsUserAgent sets the User-Agent header sent when fetching robots.txt.
func WithRobotsUserAgent(ua string) RobotsOption {
	return func(s *RobotsService) {
		s.userAgent = ua
	}
}

// NewRobotsService creates a new RobotsService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewRobotsService(client *http.Client, opts ...RobotsOption) *RobotsService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &RobotsService{
		client:    client,
		userAgent: DefaultUserAgent,
		parse:     ParseNative,
		cache:     make(map[string]sitescout.RobotsPolicy),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the policy of the origin of rawURL.
//
// A 2xx response is parsed. Any 4xx response means the site has no usable
// robots.txt and everything is allowed. 5xx responses and network errors
// are returned as errors and not cached.
func (s *RobotsService) Policy(ctx context.Context, rawURL string) (sitescout.RobotsPolicy, error) {
	u, err := sitescout.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	origin := sitescout.StripURL(u.String(), sitescout.StripOptions{
		StripCredentials: true,
		StripDefaultPort: true,
		OriginOnly:       true,
	})

	s.mu.Lock()
	policy, ok := s.cache[origin]
	s.mu.Unlock()
	if ok {
		return policy, nil
	}

	policy, err = s.fetch(ctx, origin+"robots.txt")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[origin] = policy
	s.mu.Unlock()
	return policy, nil
}

func (s *RobotsService) fetch(ctx context.Context, robotsURL string) (sitescout.RobotsPolicy, error) {
	resp, err := get(ctx, s.client, robotsURL, s.userAgent)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return s.parse(io.LimitReader(resp.Body, maxRobotsSize))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return robots.ParseString(""), nil
	default:
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, robotsURL)
	}
}
