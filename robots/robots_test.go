package robots_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitescout"
	"github.com/fwojciec/sitescout/robots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_WildcardAndExactAgent(t *testing.T) {
	t.Parallel()

	p, err := robots.Parse(strings.NewReader(`User-agent: *
Disallow: /

User-agent: Googlebot
Disallow:
`))

	require.NoError(t, err)
	assert.True(t, p.Allowed("/", "Googlebot"))
	assert.False(t, p.Allowed("/", "YandexBot"))
	assert.False(t, p.Allowed("/anything", "YandexBot"))
}

func TestParse_NilReader(t *testing.T) {
	t.Parallel()

	p, err := robots.Parse(nil)

	require.Error(t, err)
	assert.Nil(t, p)
	assert.Equal(t, sitescout.EINVALID, sitescout.ErrorCode(err))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestParse_ReadError(t *testing.T) {
	t.Parallel()

	_, err := robots.Parse(failingReader{})

	require.Error(t, err)
	assert.Equal(t, sitescout.EINTERNAL, sitescout.ErrorCode(err))
}

func TestParseString_EmptyAllowsEverything(t *testing.T) {
	t.Parallel()

	p := robots.ParseString("")

	assert.True(t, p.Allowed("/", "AnyBot"))
	assert.True(t, p.Allowed("/private", "AnyBot"))
	assert.Empty(t, p.Sitemaps())
	assert.Empty(t, p.Agents())
	assert.Zero(t, p.CrawlDelay("AnyBot"))
}

func TestParseString_GarbageIsIgnored(t *testing.T) {
	t.Parallel()

	p := robots.ParseString("<html><body>Not found</body></html>\nthis is nonsense\n:::\n")

	assert.True(t, p.Allowed("/", "AnyBot"))
	assert.Empty(t, p.Agents())
}

func TestAllowed(t *testing.T) {
	t.Parallel()

	const body = `# example robots.txt
User-agent: *
Disallow: /private/
Allow: /private/public/
Disallow: /*.pdf$
Disallow: /search*q=
Allow: /page
Disallow: /page

User-agent: ExampleBot
Disallow: /bot-only # trailing comment
`
	p := robots.ParseString(body)

	tests := []struct {
		name  string
		path  string
		agent string
		want  bool
	}{
		{"unmatched path", "/docs", "AnyBot", true},
		{"disallowed prefix", "/private/secret", "AnyBot", false},
		{"longer allow wins", "/private/public/page", "AnyBot", true},
		{"anchored wildcard matches", "/files/report.pdf", "AnyBot", false},
		{"anchored wildcard needs end", "/files/report.pdf?x=1", "AnyBot", true},
		{"inner wildcard", "/search?lang=en&q=go", "AnyBot", false},
		{"inner wildcard without match", "/search?lang=en", "AnyBot", true},
		{"allow wins tie", "/page", "AnyBot", true},
		{"full URL is reduced to path", "https://example.com/private/x", "AnyBot", false},
		{"exact agent replaces wildcard", "/private/secret", "ExampleBot", true},
		{"exact agent rules apply", "/bot-only/x", "ExampleBot", false},
		{"agent match is case-insensitive", "/bot-only", "examplebot", false},
		{"agent version is ignored", "/bot-only", "ExampleBot/2.1 (+https://example.com)", false},
		{"empty path is root", "", "ExampleBot", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.Allowed(tt.path, tt.agent))
		})
	}
}

func TestAllowed_PercentEncoding(t *testing.T) {
	t.Parallel()

	p := robots.ParseString("User-agent: *\nDisallow: /a%20b\nDisallow: /caf%C3%A9\n")

	assert.False(t, p.Allowed("/a b", "AnyBot"))
	assert.False(t, p.Allowed("/a%20b/c", "AnyBot"))
	assert.False(t, p.Allowed("/café", "AnyBot"))
	assert.True(t, p.Allowed("/ab", "AnyBot"))
}

func TestAllowed_NoWildcardRecord(t *testing.T) {
	t.Parallel()

	p := robots.ParseString("User-agent: OtherBot\nDisallow: /\n")

	assert.True(t, p.Allowed("/", "AnyBot"))
	assert.False(t, p.Allowed("/", "OtherBot"))
}

func TestParseString_Records(t *testing.T) {
	t.Parallel()

	t.Run("consecutive agents share a record", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("User-agent: a\nUser-agent: b\nDisallow: /x\n")

		assert.False(t, p.Allowed("/x", "a"))
		assert.False(t, p.Allowed("/x", "b"))
		assert.Equal(t, []string{"a", "b"}, p.Agents())
	})

	t.Run("agent after directives starts a record", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("User-agent: a\nDisallow: /x\nUser-agent: b\nDisallow: /y\n")

		assert.False(t, p.Allowed("/x", "a"))
		assert.True(t, p.Allowed("/y", "a"))
		assert.True(t, p.Allowed("/x", "b"))
		assert.False(t, p.Allowed("/y", "b"))
	})

	t.Run("blank line ends a record", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("User-agent: *\n\nDisallow: /\n")

		assert.True(t, p.Allowed("/", "AnyBot"))
	})

	t.Run("comment lines do not end a record", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("User-agent: *\n# nothing to see\nDisallow: /\n")

		assert.False(t, p.Allowed("/", "AnyBot"))
	})

	t.Run("rules before any agent are ignored", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("Disallow: /\n\nUser-agent: *\nDisallow: /x\n")

		assert.True(t, p.Allowed("/", "AnyBot"))
		assert.False(t, p.Allowed("/x", "AnyBot"))
	})

	t.Run("records for the same agent are merged", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("User-agent: a\nDisallow: /x\n\nUser-agent: A\nDisallow: /y\n")

		assert.Equal(t, []sitescout.RobotsRule{
			{Directive: sitescout.Disallow, Path: "/x"},
			{Directive: sitescout.Disallow, Path: "/y"},
		}, p.Rules("a"))
		assert.Equal(t, []string{"a"}, p.Agents())
	})

	t.Run("record without directives allows", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("User-agent: *\nDisallow: /\n\nUser-agent: FriendlyBot\n")

		assert.True(t, p.Allowed("/", "FriendlyBot"))
		assert.Empty(t, p.Rules("FriendlyBot"))
	})

	t.Run("windows line endings and BOM", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("\ufeffUser-agent: *\r\nDisallow: /tmp\r\n")

		assert.False(t, p.Allowed("/tmp/x", "AnyBot"))
		assert.Equal(t, []string{"*"}, p.Agents())
	})

	t.Run("misspelled keys are accepted", func(t *testing.T) {
		t.Parallel()

		p := robots.ParseString("useragent: *\ndissallow: /old\n")

		assert.False(t, p.Allowed("/old", "AnyBot"))
	})
}

func TestSitemaps(t *testing.T) {
	t.Parallel()

	p := robots.ParseString(`Sitemap: https://example.com/sitemap.xml
User-agent: *
Disallow: /private
Sitemap: https://example.com/news.xml

sitemap:https://example.com/other.xml
`)

	assert.Equal(t, []string{
		"https://example.com/sitemap.xml",
		"https://example.com/news.xml",
		"https://example.com/other.xml",
	}, p.Sitemaps())
	// Sitemap lines do not interrupt the record.
	assert.False(t, p.Allowed("/private", "AnyBot"))

	s := p.Sitemaps()
	s[0] = "changed"
	assert.Equal(t, "https://example.com/sitemap.xml", p.Sitemaps()[0])
}

func TestCrawlDelay(t *testing.T) {
	t.Parallel()

	p := robots.ParseString(`User-agent: *
Crawl-delay: 2

User-agent: SlowBot
Crawl-delay: 0.5

User-agent: BadBot
Crawl-delay: soon
`)

	assert.Equal(t, 2*time.Second, p.CrawlDelay("AnyBot"))
	assert.Equal(t, 500*time.Millisecond, p.CrawlDelay("SlowBot"))
	assert.Zero(t, p.CrawlDelay("BadBot"))
}

func TestRules_ReturnsCopy(t *testing.T) {
	t.Parallel()

	p := robots.ParseString("User-agent: *\nDisallow: /x\nAllow: /x/y\n")

	rules := p.Rules("*")
	require.Len(t, rules, 2)
	assert.Equal(t, sitescout.Allow, rules[1].Directive)
	rules[0].Path = "/changed"

	assert.Equal(t, "/x", p.Rules("*")[0].Path)
	assert.Nil(t, p.Rules("missing"))
}

func TestPolicy_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	p := robots.ParseString("User-agent: *\nDisallow: /private\nCrawl-delay: 1\nSitemap: https://example.com/sitemap.xml\n")

	const workers = 32
	var (
		wg       sync.WaitGroup
		failures atomic.Int32
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.Allowed("/private/x", "AnyBot") ||
				!p.Allowed(fmt.Sprintf("/page/%d", i), "AnyBot") ||
				p.CrawlDelay("AnyBot") != time.Second ||
				len(p.Sitemaps()) != 1 ||
				len(p.Rules("*")) != 1 {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
}
