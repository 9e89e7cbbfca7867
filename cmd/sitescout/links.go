package main

import (
	"fmt"
	"net/url"

	"github.com/fwojciec/sitescout"
	"github.com/fwojciec/sitescout/goquery"
)

// Run executes the links command.
func (c *LinksCmd) Run(deps *Dependencies) error {
	page, err := deps.Fetcher.Fetch(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	base, err := resolveBase(page.URL, goquery.BaseURL(page.Body, page.URL))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	links, err := deps.Links.ExtractLinks(page.Body, base)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	for _, link := range links {
		if c.Agent != "" {
			policy, err := deps.Robots.Policy(deps.Ctx, link.URL.String())
			if err != nil {
				fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", link.URL, sitescout.ErrorMessage(err))
				continue
			}
			if !policy.Allowed(link.URL.String(), c.Agent) {
				continue
			}
		}

		line := link.URL.String()
		if link.Text != "" {
			line += "\t" + link.Text
		}
		if link.NoFollow {
			line += "\t(nofollow)"
		}
		fmt.Fprintln(deps.Stdout, line)
	}
	return nil
}

// resolveBase resolves a possibly relative <base href> against the page URL.
func resolveBase(pageURL, base string) (string, error) {
	p, err := url.Parse(pageURL)
	if err != nil {
		return "", sitescout.Errorf(sitescout.EINVALID, "invalid page URL %q", pageURL)
	}
	ref, err := url.Parse(base)
	if err != nil {
		return pageURL, nil
	}
	return p.ResolveReference(ref).String(), nil
}
