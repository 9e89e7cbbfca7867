// Package slog provides log/slog decorators for the sitescout services.
package slog

import "github.com/fwojciec/sitescout"

// redact removes credentials from a URL before it is logged.
func redact(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	return sitescout.StripURL(rawURL, sitescout.StripOptions{StripCredentials: true})
}
