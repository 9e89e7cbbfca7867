package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/sitescout"
	main "github.com/fwojciec/sitescout/cmd/sitescout"
	"github.com/fwojciec/sitescout/goquery"
	"github.com/fwojciec/sitescout/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticPage(url, body string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (*sitescout.Page, error) {
			return &sitescout.Page{URL: url, Body: body, Encoding: "utf-8"}, nil
		},
	}
}

func TestLinksCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints resolved links", func(t *testing.T) {
		t.Parallel()

		body := `<html><body>
			<a href="/docs/intro">Intro</a>
			<a href="guide#setup" rel="nofollow">Guide</a>
			<a href="mailto:team@example.com">Mail</a>
		</body></html>`

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Fetcher: staticPage("https://example.com/docs/", body),
			Links:   goquery.NewLinkExtractor(),
		}

		err := (&main.LinksCmd{URL: "https://example.com/docs/"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t,
			"https://example.com/docs/intro\tIntro\nhttps://example.com/docs/guide\tGuide\t(nofollow)\n",
			stdout.String())
	})

	t.Run("honors relative base element", func(t *testing.T) {
		t.Parallel()

		body := `<html><head><base href="/v2/"></head><body><a href="page">P</a></body></html>`

		var gotBase string
		links := &mock.LinkExtractor{
			ExtractLinksFn: func(body, baseURL string) ([]sitescout.ExtractedLink, error) {
				gotBase = baseURL
				return goquery.NewLinkExtractor().ExtractLinks(body, baseURL)
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Fetcher: staticPage("https://example.com/docs/index.html", body),
			Links:   links,
		}

		err := (&main.LinksCmd{URL: "https://example.com/docs/index.html"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/v2/", gotBase)
		assert.Equal(t, "https://example.com/v2/page\tP\n", stdout.String())
	})

	t.Run("drops links disallowed by robots.txt", func(t *testing.T) {
		t.Parallel()

		body := `<a href="/public">Public</a><a href="/private/x">Private</a>`

		robots := &mock.RobotsService{
			PolicyFn: func(_ context.Context, _ string) (sitescout.RobotsPolicy, error) {
				return &mock.RobotsPolicy{
					AllowedFn: func(path, agent string) bool {
						return path != "https://example.com/private/x"
					},
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Fetcher: staticPage("https://example.com/", body),
			Links:   goquery.NewLinkExtractor(),
			Robots:  robots,
		}

		err := (&main.LinksCmd{URL: "https://example.com/", Agent: "TestBot"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/public\tPublic\n", stdout.String())
	})

	t.Run("reports fetch errors", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*sitescout.Page, error) {
				return nil, sitescout.Errorf(sitescout.ENOTFOUND, "HTTP 404 for %s", url)
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Fetcher: fetcher}

		err := (&main.LinksCmd{URL: "https://example.com/missing"}).Run(deps)

		assert.Equal(t, sitescout.ENOTFOUND, sitescout.ErrorCode(err))
		assert.Contains(t, stderr.String(), "HTTP 404 for https://example.com/missing")
	})
}
