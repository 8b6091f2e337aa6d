package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Name identifies a page of the route table.
type Name string

const (
	Result    Name = "Result"
	TestPaper Name = "TestPaper"
	TestHome  Name = "TestHome"
	Index     Name = "Index"
	Home      Name = "Home"
	Login     Name = "Login"
	NotFound  Name = "NotFound"
)

// Route maps a path to a page, or to another path when Redirect is set.
type Route struct {
	Path     string
	Name     Name
	Redirect string
}

// Table is a static list of routes. Order matters only for duplicate paths,
// where the first entry wins.
type Table []Route

// DefaultTable is the browser-facing route table.
var DefaultTable = Table{
	{Path: "/", Redirect: "/index"},
	{Path: "/result", Name: Result},
	{Path: "/test", Name: TestPaper},
	{Path: "/select-test", Name: TestHome},
	{Path: "/index", Name: Index},
	{Path: "/home", Name: Home},
	{Path: "/login", Name: Login},
}

// Match is the outcome of resolving a path.
type Match struct {
	Route      Route
	Path       string
	Redirected bool
}

// Resolve finds the page shown for path. A redirect entry is followed once;
// anything unmatched resolves to NotFound. Matching ignores case and a
// trailing slash.
func (t Table) Resolve(path string) Match {
	r, ok := t.lookup(path)
	if !ok {
		return Match{Route: Route{Path: path, Name: NotFound}, Path: path}
	}
	if r.Redirect == "" {
		return Match{Route: r, Path: r.Path}
	}

	target, ok := t.lookup(r.Redirect)
	if !ok || target.Redirect != "" {
		return Match{Route: Route{Path: r.Redirect, Name: NotFound}, Path: r.Redirect, Redirected: true}
	}
	return Match{Route: target, Path: target.Path, Redirected: true}
}

func (t Table) lookup(path string) (Route, bool) {
	path = normalize(path)
	for _, r := range t {
		if strings.EqualFold(normalize(r.Path), path) {
			return r, true
		}
	}
	return Route{}, false
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

// Pages holds the handler of each named page.
type Pages map[Name]gin.HandlerFunc

// Register adds a GET route per table entry and the NotFound page as the
// engine's fallback. Redirects answer 302 and keep the query string. A GET
// whose path matches an entry only up to case or a trailing slash is
// redirected to the entry's path. mw runs in front of every page.
func (t Table) Register(r *gin.Engine, pages Pages, mw ...gin.HandlerFunc) error {
	notFound, ok := pages[NotFound]
	if !ok {
		return fmt.Errorf("routes: no page for %s", NotFound)
	}

	seen := make(map[string]bool, len(t))
	for _, route := range t {
		if seen[route.Path] {
			continue
		}
		seen[route.Path] = true

		if route.Redirect != "" {
			r.GET(route.Path, redirectTo(route.Redirect))
			continue
		}
		page, ok := pages[route.Name]
		if !ok {
			return fmt.Errorf("routes: no page for %s (%s)", route.Name, route.Path)
		}
		r.GET(route.Path, chain(mw, page)...)
	}

	r.NoRoute(append([]gin.HandlerFunc{t.canonical}, chain(mw, notFound)...)...)
	return nil
}

// canonical redirects to the table path that path resolves to when gin's
// case-sensitive router missed it.
func (t Table) canonical(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		return
	}
	path := c.Request.URL.Path
	m := t.Resolve(path)
	if m.Route.Name == NotFound || m.Path == path {
		return
	}
	redirectTo(m.Path)(c)
	c.Abort()
}

func redirectTo(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		location := target
		if q := c.Request.URL.RawQuery; q != "" {
			location += "?" + q
		}
		c.Redirect(http.StatusFound, location)
	}
}

func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc(nil), mw...), h)
}
