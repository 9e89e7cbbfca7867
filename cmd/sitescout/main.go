package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitescout"
	"github.com/fwojciec/sitescout/goquery"
	sitescouthttp "github.com/fwojciec/sitescout/http"
	"github.com/fwojciec/sitescout/robotstxt"
	scslog "github.com/fwojciec/sitescout/slog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		OpenStore: OpenStore,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitescout"),
		kong.Description("Discover which URLs a site exposes and whether they may be crawled"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"user_agent": sitescouthttp.DefaultUserAgent},
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitescout --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Wire services
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	client := &http.Client{Timeout: cli.Timeout}

	parse := sitescouthttp.ParseNative
	if cli.RobotsParser == "robotstxt" {
		parse = parseRobotstxt
	}
	deps.Robots = scslog.NewLoggingRobotsService(
		sitescouthttp.NewRobotsService(client,
			sitescouthttp.WithParseFunc(parse),
			sitescouthttp.WithRobotsUserAgent(cli.UserAgent),
		),
		deps.Logger,
	)

	deps.Sitemaps = scslog.NewLoggingSitemapService(
		sitescouthttp.NewSitemapService(client,
			sitescouthttp.WithRobotsService(deps.Robots),
			sitescouthttp.WithSitemapUserAgent(cli.UserAgent),
			sitescouthttp.WithMaxDepth(cli.Sitemap.MaxDepth),
			sitescouthttp.WithConcurrency(cli.Sitemap.Concurrency),
			sitescouthttp.WithAlternates(cli.Sitemap.Alternates),
		),
		deps.Logger,
	)

	logger := deps.Logger
	deps.Fetcher = scslog.NewLoggingFetcher(
		sitescouthttp.NewRetryFetcher(
			sitescouthttp.NewFetcher(
				sitescouthttp.WithTimeout(cli.Timeout),
				sitescouthttp.WithUserAgent(cli.UserAgent),
			),
			sitescouthttp.RetryDelays(max(cli.Retries, 0)),
			func(format string, args ...any) { logger.Warn(fmt.Sprintf(format, args...)) },
		),
		deps.Logger,
	)

	var linkOpts []goquery.Option
	if len(cli.Links.AllowDomains) > 0 {
		linkOpts = append(linkOpts, goquery.WithAllowDomains(cli.Links.AllowDomains...))
	}
	if len(cli.Links.DenyDomains) > 0 {
		linkOpts = append(linkOpts, goquery.WithDenyDomains(cli.Links.DenyDomains...))
	}
	deps.Links = scslog.NewLoggingLinkExtractor(goquery.NewLinkExtractor(linkOpts...), deps.Logger)

	return kongCtx.Run(deps)
}

// parseRobotstxt parses robots.txt with github.com/temoto/robotstxt.
func parseRobotstxt(r io.Reader) (sitescout.RobotsPolicy, error) {
	p, err := robotstxt.Parse(r)
	if err != nil {
		return nil, err
	}
	return p, nil
}
