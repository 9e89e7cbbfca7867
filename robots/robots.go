// Package robots parses robots.txt files and evaluates them natively,
// keeping the parsed rule set inspectable.
package robots

import (
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/sitescout"
)

// Ensure Policy implements sitescout.RobotsPolicy at compile time.
var _ sitescout.RobotsPolicy = (*Policy)(nil)

// wildcardAgent is the record that applies to agents without their own record.
const wildcardAgent = "*"

// directiveKeys maps accepted field names, including common misspellings,
// to their canonical form.
var directiveKeys = map[string]string{
	"user-agent":  "user-agent",
	"useragent":   "user-agent",
	"user agent":  "user-agent",
	"allow":       "allow",
	"disallow":    "disallow",
	"dissallow":   "disallow",
	"crawl-delay": "crawl-delay",
	"crawldelay":  "crawl-delay",
	"sitemap":     "sitemap",
	"site-map":    "sitemap",
}

// group holds the merged records of a single user-agent token.
type group struct {
	rules      []sitescout.RobotsRule
	crawlDelay time.Duration
}

// Policy is a parsed robots.txt file. It is immutable and safe for
// concurrent use.
type Policy struct {
	groups   map[string]*group
	agents   []string
	sitemaps []string
}

// Parse reads a robots.txt body from r.
//
// A nil reader is the only input rejected (EINVALID). Empty or nonsensical
// content yields a policy that allows everything; lines that cannot be
// understood are skipped.
func Parse(r io.Reader) (*Policy, error) {
	if r == nil {
		return nil, sitescout.Errorf(sitescout.EINVALID, "robots.txt source required")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return ParseString(string(b)), nil
}

// ParseString parses a robots.txt body. It never fails.
//
// Records are delimited by blank lines, or by a User-agent line that follows
// directives. Consecutive User-agent lines share one record, and records
// naming the same agent are merged in order.
func ParseString(s string) *Policy {
	p := &Policy{groups: make(map[string]*group)}

	var agents []string
	inRules := false

	for _, line := range strings.Split(strings.TrimPrefix(s, "\ufeff"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			agents, inRules = nil, false
			continue
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key := directiveKeys[strings.ToLower(strings.TrimSpace(field))]
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if inRules {
				agents, inRules = nil, false
			}
			agent := normalizeAgent(value)
			if agent == "" {
				continue
			}
			agents = append(agents, agent)
			p.groupFor(agent)
		case "allow", "disallow":
			if len(agents) == 0 {
				continue
			}
			inRules = true
			// An empty value disallows (or allows) nothing.
			if value == "" {
				continue
			}
			rule := sitescout.RobotsRule{Directive: sitescout.Disallow, Path: value}
			if key == "allow" {
				rule.Directive = sitescout.Allow
			}
			for _, agent := range agents {
				g := p.groups[agent]
				g.rules = append(g.rules, rule)
			}
		case "crawl-delay":
			if len(agents) == 0 {
				continue
			}
			inRules = true
			delay, ok := parseDelay(value)
			if !ok {
				continue
			}
			for _, agent := range agents {
				p.groups[agent].crawlDelay = delay
			}
		case "sitemap":
			if value != "" {
				p.sitemaps = append(p.sitemaps, value)
			}
		}
	}

	return p
}

func (p *Policy) groupFor(agent string) *group {
	g, ok := p.groups[agent]
	if !ok {
		g = &group{}
		p.groups[agent] = g
		p.agents = append(p.agents, agent)
	}
	return g
}

// normalizeAgent reduces a user-agent string to its lowercase product token,
// so "Googlebot/2.1 (+http://www.google.com/bot.html)" becomes "googlebot".
func normalizeAgent(agent string) string {
	if i := strings.IndexByte(agent, '/'); i >= 0 {
		agent = agent[:i]
	}
	return strings.ToLower(strings.TrimSpace(agent))
}

func parseDelay(value string) (time.Duration, bool) {
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// find returns the group governing agent: its own record if declared,
// otherwise the wildcard record, otherwise nil.
func (p *Policy) find(agent string) *group {
	if g, ok := p.groups[normalizeAgent(agent)]; ok {
		return g
	}
	return p.groups[wildcardAgent]
}

// Allowed reports whether agent may fetch path.
//
// Within the governing record the rule with the longest matching path wins;
// an Allow and a Disallow of equal length resolve to Allow. Without a
// governing record or matching rule the path is allowed.
func (p *Policy) Allowed(path, agent string) bool {
	g := p.find(agent)
	if g == nil {
		return true
	}

	target := unescape(sitescout.RequestPath(path))
	allowed, bestLen := true, -1
	for _, rule := range g.rules {
		if !matchRule(unescape(rule.Path), target) {
			continue
		}
		n := len(rule.Path)
		if n > bestLen || (n == bestLen && rule.Directive == sitescout.Allow) {
			allowed = rule.Directive == sitescout.Allow
			bestLen = n
		}
	}
	return allowed
}

// Sitemaps returns the Sitemap directives in file order.
func (p *Policy) Sitemaps() []string {
	return append([]string(nil), p.sitemaps...)
}

// CrawlDelay returns the Crawl-delay of the record governing agent.
func (p *Policy) CrawlDelay(agent string) time.Duration {
	if g := p.find(agent); g != nil {
		return g.crawlDelay
	}
	return 0
}

// Agents returns the declared user-agent tokens, lowercased, in the order
// they first appeared.
func (p *Policy) Agents() []string {
	return append([]string(nil), p.agents...)
}

// Rules returns the rules declared for the exact agent token, in file order.
// It returns nil when the agent has no record.
func (p *Policy) Rules(agent string) []sitescout.RobotsRule {
	g, ok := p.groups[normalizeAgent(agent)]
	if !ok {
		return nil
	}
	return append([]sitescout.RobotsRule{}, g.rules...)
}

// matchRule reports whether pattern matches the start of path. A "*" in the
// pattern matches any sequence and a trailing "$" anchors it to the end.
func matchRule(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = pattern[:len(pattern)-1]
	}
	if !strings.Contains(pattern, "*") {
		if anchored {
			return path == pattern
		}
		return strings.HasPrefix(path, pattern)
	}

	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(path, parts[0]) {
		return false
	}
	rest := path[len(parts[0]):]
	last := len(parts) - 1
	for _, part := range parts[1:last] {
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
	}
	if anchored {
		return strings.HasSuffix(rest, parts[last])
	}
	return strings.Contains(rest, parts[last])
}

// unescape decodes percent-escapes so "/a%20b" and "/a b" compare equal.
// Invalid escapes are compared verbatim.
func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
