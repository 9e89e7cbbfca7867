package main

import (
	"fmt"

	"github.com/fwojciec/sitescout"
)

// Run executes the robots command.
func (c *RobotsCmd) Run(deps *Dependencies) error {
	policy, err := deps.Robots.Policy(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	verdict := "disallowed"
	if policy.Allowed(c.URL, c.Agent) {
		verdict = "allowed"
	}
	fmt.Fprintf(deps.Stdout, "%s %s\n", verdict, c.URL)

	if d := policy.CrawlDelay(c.Agent); d > 0 {
		fmt.Fprintf(deps.Stdout, "crawl-delay %s\n", d)
	}
	for _, s := range policy.Sitemaps() {
		fmt.Fprintf(deps.Stdout, "sitemap %s\n", s)
	}
	return nil
}
