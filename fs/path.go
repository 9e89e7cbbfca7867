// Package fs provides local file-based storage for exported artifacts.
package fs

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/fwojciec/sitescout"
)

// URLToPath converts a site URL to a relative file path with the given
// extension, rooted at the host.
// Example: https://example.com/docs/api → example.com/docs/api.txt
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", sitescout.Errorf(sitescout.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Hostname() == "" {
		return "", sitescout.Errorf(sitescout.EINVALID, "URL %q has no host", rawURL)
	}
	host := u.Hostname()
	if p := u.Port(); p != "" {
		host += "_" + p
	}

	path := strings.TrimPrefix(u.Path, "/")

	// Root or trailing slash → index
	if path == "" || strings.HasSuffix(path, "/") {
		path += "index"
	}

	return host + "/" + path + ext, nil
}

// safeJoin joins name onto base, rejecting names that would escape base.
func safeJoin(base, name string) (string, error) {
	if name == "" {
		return "", sitescout.Errorf(sitescout.EINVALID, "file name required")
	}
	if filepath.IsAbs(name) || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", sitescout.Errorf(sitescout.EINVALID, "path traversal in %q", name)
	}
	return filepath.Join(base, filepath.FromSlash(name)), nil
}
