// Package guard decides whether a client may navigate to a route given its
// session.
package guard

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLoginPath   = "/login"
	DefaultLandingPath = "/home"

	routeKey = "guard.route"
)

// RouteMeta describes one client route.
type RouteMeta struct {
	Path         string `yaml:"path" json:"path"`
	Name         string `yaml:"name,omitempty" json:"name,omitempty"`
	View         string `yaml:"view,omitempty" json:"view,omitempty"`
	NoAuth       bool   `yaml:"noAuth,omitempty" json:"noAuth,omitempty"`
	RequireAdmin bool   `yaml:"requireAdmin,omitempty" json:"requireAdmin,omitempty"`
	Redirect     string `yaml:"redirect,omitempty" json:"redirect,omitempty"`
}

// TableFile is the YAML layout accepted by LoadRoutes.
type TableFile struct {
	Login   string      `yaml:"login"`
	Landing string      `yaml:"landing"`
	Routes  []RouteMeta `yaml:"routes"`
}

// Match is a resolved route and its path parameters.
type Match struct {
	Route  RouteMeta
	Params map[string]string
}

// RouteTable maps client paths to route metadata. Patterns use ":name"
// segments; a trailing "?" marks the last parameter optional.
type RouteTable struct {
	e       *echo.Echo
	routes  []RouteMeta
	login   string
	landing string
}

// NewRouteTable builds a table. Empty login or landing paths fall back to
// DefaultLoginPath and DefaultLandingPath.
func NewRouteTable(login, landing string, routes []RouteMeta) (*RouteTable, error) {
	if login == "" {
		login = DefaultLoginPath
	}
	if landing == "" {
		landing = DefaultLandingPath
	}
	t := &RouteTable{e: echo.New(), login: login, landing: landing}

	seen := map[string]bool{}
	for _, r := range routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %q: path must start with /", r.Path)
		}
		for _, p := range expandOptional(r.Path) {
			if seen[p] {
				return nil, fmt.Errorf("route %q: duplicate pattern %s", r.Path, p)
			}
			seen[p] = true
			meta := r
			t.e.Router().Add(http.MethodGet, p, func(c echo.Context) error {
				c.Set(routeKey, meta)
				return nil
			})
		}
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// LoadRoutes reads a TableFile from r.
func LoadRoutes(r io.Reader) (*RouteTable, error) {
	var f TableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode route table: %w", err)
	}
	return NewRouteTable(f.Login, f.Landing, f.Routes)
}

// LoadRoutesFile reads a TableFile from path.
func LoadRoutesFile(path string) (*RouteTable, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open route table: %w", err)
	}
	defer fh.Close()
	return LoadRoutes(fh)
}

// Lookup resolves path, which may carry a query string or fragment.
func (t *RouteTable) Lookup(path string) (Match, bool) {
	p := pathOnly(path)
	c := t.e.NewContext(nil, nil)
	t.e.Router().Find(http.MethodGet, p, c)

	// Unmatched paths resolve to echo's NotFoundHandler, which errors.
	if err := c.Handler()(c); err != nil {
		return Match{}, false
	}
	meta, ok := c.Get(routeKey).(RouteMeta)
	if !ok {
		return Match{}, false
	}

	params := map[string]string{}
	for i, name := range c.ParamNames() {
		if v := c.ParamValues()[i]; v != "" {
			params[name] = v
		}
	}
	return Match{Route: meta, Params: params}, true
}

// Routes returns the registered definitions in insertion order.
func (t *RouteTable) Routes() []RouteMeta {
	return append([]RouteMeta(nil), t.routes...)
}

func (t *RouteTable) LoginPath() string   { return t.login }
func (t *RouteTable) LandingPath() string { return t.landing }

// expandOptional turns "/a/:x/:y?" into "/a/:x" and "/a/:x/:y".
func expandOptional(pattern string) []string {
	if !strings.HasSuffix(pattern, "?") {
		return []string{pattern}
	}
	full := strings.TrimSuffix(pattern, "?")
	idx := strings.LastIndex(full, "/")
	short := full[:idx]
	if short == "" {
		short = "/"
	}
	return []string{short, full}
}

func pathOnly(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	return p
}

// DefaultRoutes returns the marketplace's client route table.
func DefaultRoutes() *RouteTable {
	t, err := NewRouteTable(DefaultLoginPath, DefaultLandingPath, []RouteMeta{
		{Path: "/", Redirect: DefaultLoginPath},
		{Path: "/home", Name: "Home", View: "HomePage"},
		{Path: "/login", Name: "Login", View: "LoginPage", NoAuth: true},
		{Path: "/register", Name: "Register", View: "RegisterPage", NoAuth: true},
		{Path: "/need/list", Name: "NeedList", View: "NeedList"},
		{Path: "/user-detail/:id", Name: "UserDetail", View: "UserDetail"},
		{Path: "/edit-profile", Name: "EditProfile", View: "EditProfile"},
		{Path: "/service/my-list", Name: "MyServiceList", View: "MyServiceList"},
		{Path: "/need/detail/:id", Name: "NeedDetail", View: "NeedDetail"},
		{Path: "/service/form/:needId/:serviceId?", Name: "ServiceForm", View: "ServiceForm"},
		{Path: "/need/form/:id?", Name: "NeedForm", View: "NeedForm"},
		{Path: "/service/list", Name: "ServiceList", View: "ServiceList"},
		{Path: "/service/detail/:id", Name: "ServiceDetail", View: "ServiceDetail"},
		{Path: "/service/confirm/:serviceId", Name: "ServiceConfirm", View: "ServiceConfirm"},
		{Path: "/admin", Name: "Admin", View: "AdminPage", RequireAdmin: true},
	})
	if err != nil {
		panic(err)
	}
	return t
}
