package sitescout

import (
	"net/url"
	"regexp"
	"strings"
)

// StripOptions selects which components StripURL removes.
// Each flag acts on its own component, so any combination is valid.
type StripOptions struct {
	// StripCredentials removes the user[:password]@ segment.
	StripCredentials bool

	// StripDefaultPort removes an explicit port when it is the scheme default
	// (80 for http, 443 for https, 21 for ftp).
	StripDefaultPort bool

	// OriginOnly reduces the URL to scheme, host and port with path "/".
	// Credentials are not part of an origin and are removed too.
	OriginOnly bool

	// StripFragment removes the "#..." suffix.
	StripFragment bool
}

// AllStripOptions returns StripOptions with every flag set.
func AllStripOptions() StripOptions {
	return StripOptions{
		StripCredentials: true,
		StripDefaultPort: true,
		OriginOnly:       true,
		StripFragment:    true,
	}
}

// defaultPorts maps a scheme to the port it implies.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ftp":   "21",
}

// uriPattern is the component splitter from RFC 3986 Appendix B.
// It matches every input, which is what makes StripURL total.
var uriPattern = regexp.MustCompile(`(?s)^(?:([^:/?#]+):)?(?://([^/?#]*))?([^?#]*)(?:\?([^#]*))?(?:#(.*))?$`)

// uriParts holds the components of a URI as split by uriPattern.
type uriParts struct {
	scheme       string
	hasAuthority bool
	userinfo     string
	hasUserinfo  bool
	host         string
	port         string
	hasPort      bool
	path         string
	query        string
	hasQuery     bool
	fragment     string
	hasFragment  bool
}

func splitURI(s string) uriParts {
	m := uriPattern.FindStringSubmatchIndex(s)
	group := func(i int) (string, bool) {
		if m == nil || m[2*i] < 0 {
			return "", false
		}
		return s[m[2*i]:m[2*i+1]], true
	}

	var p uriParts
	p.scheme, _ = group(1)
	var authority string
	authority, p.hasAuthority = group(2)
	p.path, _ = group(3)
	p.query, p.hasQuery = group(4)
	p.fragment, p.hasFragment = group(5)

	if p.hasAuthority {
		hostport := authority
		if i := strings.LastIndexByte(authority, '@'); i >= 0 {
			p.userinfo, p.hasUserinfo = authority[:i], true
			hostport = authority[i+1:]
		}
		p.host, p.port, p.hasPort = splitHostPort(hostport)
	}
	return p
}

// splitHostPort separates an optional numeric port from a host, leaving
// bracketed IPv6 literals intact.
func splitHostPort(hostport string) (host, port string, hasPort bool) {
	i := strings.LastIndexByte(hostport, ':')
	if i < 0 || i < strings.LastIndexByte(hostport, ']') {
		return hostport, "", false
	}
	for _, r := range hostport[i+1:] {
		if r < '0' || r > '9' {
			return hostport, "", false
		}
	}
	return hostport[:i], hostport[i+1:], true
}

func (p uriParts) String() string {
	var b strings.Builder
	if p.scheme != "" {
		b.WriteString(p.scheme)
		b.WriteByte(':')
	}
	if p.hasAuthority {
		b.WriteString("//")
		if p.hasUserinfo {
			b.WriteString(p.userinfo)
			b.WriteByte('@')
		}
		b.WriteString(p.host)
		if p.hasPort {
			b.WriteByte(':')
			b.WriteString(p.port)
		}
	}
	b.WriteString(p.path)
	if p.hasQuery {
		b.WriteByte('?')
		b.WriteString(p.query)
	}
	if p.hasFragment {
		b.WriteByte('#')
		b.WriteString(p.fragment)
	}
	return b.String()
}

// StripURL removes the components of rawURL selected by opts.
//
// It never fails. Malformed input is split permissively and reassembled
// best-effort. An empty input yields "/" regardless of opts. Applying
// StripURL to its own output with the same options returns it unchanged.
func StripURL(rawURL string, opts StripOptions) string {
	if rawURL == "" {
		return "/"
	}

	p := splitURI(rawURL)
	if opts.StripCredentials || opts.OriginOnly {
		p.userinfo, p.hasUserinfo = "", false
	}
	if opts.StripDefaultPort && p.hasPort {
		if def, ok := defaultPorts[strings.ToLower(p.scheme)]; ok && def == p.port {
			p.port, p.hasPort = "", false
		}
	}
	if opts.OriginOnly {
		p.path = "/"
		p.query, p.hasQuery = "", false
		p.fragment, p.hasFragment = "", false
	}
	if opts.StripFragment {
		p.fragment, p.hasFragment = "", false
	}
	return p.String()
}

// RequestPath returns the path and query of rawURL in the form robots.txt
// rules are matched against. Input that is not an absolute URL is treated
// as a path. The result always starts with "/".
func RequestPath(rawURL string) string {
	p := splitURI(rawURL)
	path := p.path
	if p.scheme != "" && !p.hasAuthority {
		// "mailto:x" style input has no hierarchical path.
		path = ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if p.query != "" {
		path += "?" + p.query
	}
	return path
}

// URL is an absolute URL that has been parsed successfully. The zero value
// is an empty URL; a URL is never held in a partially parsed state.
type URL struct {
	u *url.URL
}

// ParseURL parses rawURL into a URL. It returns EINVALID if rawURL is empty,
// cannot be parsed, or has no scheme.
func ParseURL(rawURL string) (URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return URL{}, Errorf(EINVALID, "URL required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return URL{}, Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme == "" {
		return URL{}, Errorf(EINVALID, "URL %q has no scheme", rawURL)
	}
	return URL{u: u}, nil
}

// MustParseURL is like ParseURL but panics on error. Intended for tests and
// package-level values.
func MustParseURL(rawURL string) URL {
	u, err := ParseURL(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}

// IsURL reports whether s is a URL a crawler can act on: an http, https or
// ftp URL with a host, or a file URL.
func IsURL(s string) bool {
	u, err := ParseURL(s)
	if err != nil {
		return false
	}
	switch u.Scheme() {
	case "http", "https", "ftp":
		return u.Hostname() != ""
	case "file":
		return true
	}
	return false
}

// IsZero reports whether u is the zero URL.
func (u URL) IsZero() bool { return u.u == nil }

// String returns the URL in its serialized form.
func (u URL) String() string {
	if u.u == nil {
		return ""
	}
	return u.u.String()
}

// Scheme returns the lowercase scheme.
func (u URL) Scheme() string {
	if u.u == nil {
		return ""
	}
	return u.u.Scheme
}

// Username returns the user name from the userinfo, if any.
func (u URL) Username() string {
	if u.u == nil || u.u.User == nil {
		return ""
	}
	return u.u.User.Username()
}

// Password returns the password from the userinfo, if any.
func (u URL) Password() string {
	if u.u == nil || u.u.User == nil {
		return ""
	}
	p, _ := u.u.User.Password()
	return p
}

// Hostname returns the host without port.
func (u URL) Hostname() string {
	if u.u == nil {
		return ""
	}
	return u.u.Hostname()
}

// Port returns the explicit port, or "" if none was given.
func (u URL) Port() string {
	if u.u == nil {
		return ""
	}
	return u.u.Port()
}

// Path returns the decoded path.
func (u URL) Path() string {
	if u.u == nil {
		return ""
	}
	return u.u.Path
}

// RawQuery returns the encoded query without the leading "?".
func (u URL) RawQuery() string {
	if u.u == nil {
		return ""
	}
	return u.u.RawQuery
}

// Fragment returns the decoded fragment without the leading "#".
func (u URL) Fragment() string {
	if u.u == nil {
		return ""
	}
	return u.u.Fragment
}

// RequestURI returns the encoded path?query as sent in an HTTP request.
func (u URL) RequestURI() string {
	if u.u == nil {
		return "/"
	}
	return u.u.RequestURI()
}

// Origin returns scheme://host[:port] without credentials or path.
func (u URL) Origin() string {
	if u.u == nil {
		return ""
	}
	return u.u.Scheme + "://" + u.u.Host
}

// WithoutFragment returns a copy of u with the fragment removed.
func (u URL) WithoutFragment() URL {
	if u.u == nil {
		return u
	}
	c := *u.u
	c.Fragment = ""
	c.RawFragment = ""
	return URL{u: &c}
}

// MarshalText implements encoding.TextMarshaler.
func (u URL) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}
