package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		path       string
		name       Name
		resolved   string
		redirected bool
	}{
		{path: "/", name: Index, resolved: "/index", redirected: true},
		{path: "", name: Index, resolved: "/index", redirected: true},
		{path: "/index", name: Index, resolved: "/index"},
		{path: "/result", name: Result, resolved: "/result"},
		{path: "/test", name: TestPaper, resolved: "/test"},
		{path: "/select-test", name: TestHome, resolved: "/select-test"},
		{path: "/home", name: Home, resolved: "/home"},
		{path: "/login", name: Login, resolved: "/login"},
		{path: "/login/", name: Login, resolved: "/login"},
		{path: "/LOGIN", name: Login, resolved: "/login"},
		{path: "/nope", name: NotFound, resolved: "/nope"},
		{path: "/login/extra", name: NotFound, resolved: "/login/extra"},
		{path: "/api/admin/login", name: NotFound, resolved: "/api/admin/login"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := DefaultTable.Resolve(tt.path)
			assert.Equal(t, tt.name, m.Route.Name)
			assert.Equal(t, tt.resolved, m.Path)
			assert.Equal(t, tt.redirected, m.Redirected)
		})
	}
}

func TestResolve_RedirectFollowedOnce(t *testing.T) {
	table := Table{
		{Path: "/a", Redirect: "/b"},
		{Path: "/b", Redirect: "/c"},
		{Path: "/c", Name: Index},
		{Path: "/d", Redirect: "/missing"},
	}

	m := table.Resolve("/a")
	assert.Equal(t, NotFound, m.Route.Name)
	assert.Equal(t, "/b", m.Path)
	assert.True(t, m.Redirected)

	m = table.Resolve("/b")
	assert.Equal(t, Index, m.Route.Name)

	m = table.Resolve("/d")
	assert.Equal(t, NotFound, m.Route.Name)
	assert.Equal(t, "/missing", m.Path)
}

func stubPages() Pages {
	pages := Pages{}
	for _, name := range []Name{Result, TestPaper, TestHome, Index, Home, Login, NotFound} {
		status := http.StatusOK
		if name == NotFound {
			status = http.StatusNotFound
		}
		pages[name] = func(c *gin.Context) { c.String(status, string(name)) }
	}
	return pages
}

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, DefaultTable.Register(r, stubPages()))

	for _, route := range DefaultTable {
		if route.Redirect != "" {
			continue
		}
		t.Run(route.Path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, route.Path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, string(route.Name), w.Body.String())
		})
	}

	t.Run("redirect keeps query", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?from=mail", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/index?from=mail", w.Header().Get("Location"))
	})

	t.Run("mixed case redirects to the page", func(t *testing.T) {
		tests := []struct {
			path     string
			location string
		}{
			{"/Login", "/login"},
			{"/INDEX?x=1", "/index?x=1"},
			{"/Select-Test/", "/select-test"},
		}
		for _, tt := range tests {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusFound, w.Code, tt.path)
			assert.Equal(t, tt.location, w.Header().Get("Location"), tt.path)
		}
	})

	t.Run("mixed case post is not redirected", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/Login", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unregistered path", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does/not/exist", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, string(NotFound), w.Body.String())
	})
}

func TestRegister_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mark := func(c *gin.Context) {
		c.Header("X-Page", "1")
		c.Next()
	}
	require.NoError(t, DefaultTable.Register(r, stubPages(), mark))

	for _, path := range []string{"/index", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, "1", w.Header().Get("X-Page"), path)
	}
}

func TestRegister_MissingPage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pages := stubPages()
	delete(pages, Home)
	assert.Error(t, DefaultTable.Register(gin.New(), pages))

	pages = stubPages()
	delete(pages, NotFound)
	assert.Error(t, DefaultTable.Register(gin.New(), pages))
}
