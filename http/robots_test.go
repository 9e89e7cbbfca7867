package http_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/sitescout"
	sitescouthttp "github.com/fwojciec/sitescout/http"
	"github.com/fwojciec/sitescout/robotstxt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsService_Policy(t *testing.T) {
	t.Parallel()

	t.Run("parses robots.txt of the origin", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotAgent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath, gotAgent = r.URL.Path, r.UserAgent()
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\nSitemap: https://example.com/sitemap.xml\n"))
		}))
		defer srv.Close()

		svc := sitescouthttp.NewRobotsService(srv.Client(), sitescouthttp.WithRobotsUserAgent("TestBot/1.0"))
		policy, err := svc.Policy(context.Background(), srv.URL+"/docs/page?x=1#top")

		require.NoError(t, err)
		assert.Equal(t, "/robots.txt", gotPath)
		assert.Equal(t, "TestBot/1.0", gotAgent)
		assert.False(t, policy.Allowed("/private/x", "TestBot"))
		assert.True(t, policy.Allowed("/docs/page", "TestBot"))
		assert.Equal(t, []string{"https://example.com/sitemap.xml"}, policy.Sitemaps())
	})

	t.Run("missing robots.txt allows everything", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		policy, err := sitescouthttp.NewRobotsService(srv.Client()).Policy(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.True(t, policy.Allowed("/anything", "AnyBot"))
		assert.Empty(t, policy.Sitemaps())
	})

	t.Run("server error is returned and not cached", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
		}))
		defer srv.Close()

		svc := sitescouthttp.NewRobotsService(srv.Client())

		_, err := svc.Policy(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")

		policy, err := svc.Policy(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.False(t, policy.Allowed("/", "AnyBot"))
	})

	t.Run("caches policy per origin", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /x\n"))
		}))
		defer srv.Close()

		svc := sitescouthttp.NewRobotsService(srv.Client())
		for _, path := range []string{"/", "/a", "/b/c?d=e"} {
			_, err := svc.Policy(context.Background(), srv.URL+path)
			require.NoError(t, err)
		}

		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("concurrent callers share one policy", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\nSitemap: https://example.com/sitemap.xml\n"))
		}))
		defer srv.Close()

		svc := sitescouthttp.NewRobotsService(srv.Client())

		// Warm the cache so every goroutine reads the same policy.
		_, err := svc.Policy(context.Background(), srv.URL)
		require.NoError(t, err)

		const workers = 32
		var (
			wg       sync.WaitGroup
			failures atomic.Int32
		)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				policy, err := svc.Policy(context.Background(), fmt.Sprintf("%s/page/%d", srv.URL, i))
				if err != nil ||
					policy.Allowed("/private/x", "AnyBot") ||
					!policy.Allowed(fmt.Sprintf("/page/%d", i), "AnyBot") ||
					len(policy.Sitemaps()) != 1 {
					failures.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Zero(t, failures.Load())
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("uses custom parse func", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /tmp\nCrawl-delay: 2\n"))
		}))
		defer srv.Close()

		svc := sitescouthttp.NewRobotsService(srv.Client(), sitescouthttp.WithParseFunc(
			func(r io.Reader) (sitescout.RobotsPolicy, error) {
				p, err := robotstxt.Parse(r)
				if err != nil {
					return nil, err
				}
				return p, nil
			},
		))
		policy, err := svc.Policy(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.IsType(t, &robotstxt.Policy{}, policy)
		assert.False(t, policy.Allowed("/tmp/file", "AnyBot"))
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		t.Parallel()

		_, err := sitescouthttp.NewRobotsService(nil).Policy(context.Background(), "")

		assert.Equal(t, sitescout.EINVALID, sitescout.ErrorCode(err))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := sitescouthttp.NewRobotsService(srv.Client()).Policy(ctx, srv.URL)
		require.ErrorIs(t, err, context.Canceled)
	})
}
