package main

import (
	"fmt"

	"github.com/fwojciec/sitescout"
)

// Run executes the strip command.
func (c *StripCmd) Run(deps *Dependencies) error {
	opts := sitescout.StripOptions{
		StripCredentials: c.Credentials,
		StripDefaultPort: c.DefaultPort,
		OriginOnly:       c.Origin,
		StripFragment:    c.Fragment,
	}
	if c.All {
		opts = sitescout.AllStripOptions()
	}

	for _, u := range c.URLs {
		fmt.Fprintln(deps.Stdout, sitescout.StripURL(u, opts))
	}
	return nil
}
