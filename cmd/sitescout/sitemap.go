package main

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/fwojciec/sitescout"
	"github.com/fwojciec/sitescout/fs"
	"github.com/fwojciec/sitescout/ftp"
	"github.com/fwojciec/sitescout/gzip"
	"github.com/fwojciec/sitescout/xz"
)

// Run executes the sitemap command.
func (c *SitemapCmd) Run(deps *Dependencies) error {
	// Compile filters to URLFilter (validates regex patterns early)
	urlFilter, err := compileFilter(c.Filter, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	// Open the store before discovery so a bad target fails fast
	var store sitescout.FileStore
	if c.Output != "" {
		store, err = deps.OpenStore(c.Output)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
			return err
		}
	}

	urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.URL, urlFilter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	if store == nil {
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	name, err := fs.URLToPath(c.URL, ".txt")
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	var buf bytes.Buffer
	name, n, err := export(&buf, name, c.Compress, urls)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	if err := store.Persist(deps.Ctx, name, &buf); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitescout.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d URLs (%s) to %s\n", len(urls), FormatBytes(n), name)
	return nil
}

// compileFilter builds a URLFilter from include and exclude patterns.
// Returns nil when no patterns are given.
func compileFilter(include, exclude []string) (*sitescout.URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	f := &sitescout.URLFilter{}
	for _, pattern := range include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, sitescout.Errorf(sitescout.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		f.Include = append(f.Include, re)
	}
	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, sitescout.Errorf(sitescout.EINVALID, "invalid exclude pattern %q: %v", pattern, err)
		}
		f.Exclude = append(f.Exclude, re)
	}
	return f, nil
}

// export writes urls one per line through the requested compression into w.
// It returns the export name with the compression extension appended and
// the number of uncompressed bytes written.
func export(w io.Writer, name, compress string, urls []string) (string, int, error) {
	var (
		pp  sitescout.PostProcessor
		err error
	)
	switch compress {
	case "gzip":
		pp, err = gzip.NewPlugin(w, gzip.Options{Filename: path.Base(name)})
		name += ".gz"
	case "xz":
		pp, err = xz.NewPlugin(w)
		name += ".xz"
	case "", "none":
		pp = nopCloser{w}
	default:
		return "", 0, sitescout.Errorf(sitescout.EINVALID, "unknown compression %q", compress)
	}
	if err != nil {
		return "", 0, err
	}

	var total int
	for _, u := range urls {
		n, err := io.WriteString(pp, u+"\n")
		total += n
		if err != nil {
			_ = pp.Close()
			return "", total, err
		}
	}
	if err := pp.Close(); err != nil {
		return "", total, err
	}
	return name, total, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// OpenStore selects a storage backend for target: local paths use the file
// system and ftp:// URIs an FTP server.
func OpenStore(target string) (sitescout.FileStore, error) {
	switch {
	case sitescout.IsPosixPath(target):
		store, err := fs.NewFileStore(target)
		if err != nil {
			return nil, err
		}
		return store, nil
	case strings.HasPrefix(target, "ftp://"):
		store, err := ftp.NewFilesStore(target)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, sitescout.Errorf(sitescout.EINVALID, "unsupported export target %q", target)
	}
}
