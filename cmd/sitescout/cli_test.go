package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/sitescout/cmd/sitescout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"user_agent": "TestBot/1.0"},
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range []string{"strip", "robots", "sitemap", "links"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help shows kong output", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
		assert.Contains(t, stdout.String(), "Flags:")
	})

	t.Run("no arguments is an error", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(), nil, stdout, stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("rejects unknown robots parser", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(),
			[]string{"--robots-parser=other", "strip", "https://example.com"}, stdout, stderr)

		require.Error(t, err)
	})

	t.Run("strips URLs end to end", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(),
			[]string{"strip", "--all", "https://user:pw@example.com:443/a?b#c"}, stdout, stderr)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/\n", stdout.String())
	})

	for _, parser := range []string{"native", "robotstxt"} {
		t.Run("evaluates robots.txt with "+parser+" parser", func(t *testing.T) {
			t.Parallel()

			var gotAgent string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAgent = r.UserAgent()
				_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			}))
			defer srv.Close()

			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			err := main.NewMain().Run(context.Background(), []string{
				"--robots-parser=" + parser,
				"--user-agent=TestBot/1.0",
				"robots", srv.URL + "/private/page",
			}, stdout, stderr)

			require.NoError(t, err)
			assert.Equal(t, "TestBot/1.0", gotAgent)
			assert.Contains(t, stdout.String(), "disallowed "+srv.URL+"/private/page")
		})
	}

	t.Run("verbose logs requests to stderr", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		err := main.NewMain().Run(context.Background(),
			[]string{"--verbose", "robots", srv.URL + "/"}, stdout, stderr)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "allowed")
		assert.Contains(t, stderr.String(), "robots policy")
	})
}
