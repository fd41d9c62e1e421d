package guard

import (
	"net/url"

	"github.com/haofuwu/service-market/internal/core/domain"
)

// Outcome is the result kind of a navigation decision.
type Outcome string

const (
	Allow    Outcome = "allow"
	Redirect Outcome = "redirect"
)

// Reasons attached to a Decision.
const (
	ReasonSamePath        = "same_path"
	ReasonStaticRedirect  = "static_redirect"
	ReasonPublic          = "public"
	ReasonAlreadyLoggedIn = "already_logged_in"
	ReasonLoginRequired   = "login_required"
	ReasonAdminRequired   = "admin_required"
	ReasonAuthorized      = "authorized"
)

// Decision is what the client should do with a navigation attempt.
type Decision struct {
	Outcome  Outcome    `json:"outcome"`
	Location string     `json:"location,omitempty"` // set when Outcome is Redirect
	Reason   string     `json:"reason"`
	Route    *RouteMeta `json:"route,omitempty"` // nil for unknown paths
}

// Guard evaluates navigation attempts against a route table.
type Guard struct {
	routes *RouteTable
}

func New(routes *RouteTable) *Guard {
	return &Guard{routes: routes}
}

// Routes exposes the underlying table.
func (g *Guard) Routes() *RouteTable {
	return g.routes
}

// Decide returns the decision for navigating from -> to with sess. It is a
// pure function of its inputs and the table. Unknown paths require login.
func (g *Guard) Decide(to, from string, sess domain.Session) Decision {
	target := pathOnly(to)
	m, known := g.routes.Lookup(target)
	var route *RouteMeta
	if known {
		r := m.Route
		route = &r
	}

	if from != "" && pathOnly(from) == target {
		return Decision{Outcome: Allow, Reason: ReasonSamePath, Route: route}
	}

	if known && route.Redirect != "" {
		return Decision{Outcome: Redirect, Location: route.Redirect, Reason: ReasonStaticRedirect, Route: route}
	}

	if known && route.NoAuth {
		if sess.IsLogin && target == g.routes.LoginPath() {
			return Decision{Outcome: Redirect, Location: g.routes.LandingPath(), Reason: ReasonAlreadyLoggedIn, Route: route}
		}
		return Decision{Outcome: Allow, Reason: ReasonPublic, Route: route}
	}

	if !sess.IsLogin {
		loc := g.routes.LoginPath() + "?" + url.Values{"redirect": {target}}.Encode()
		return Decision{Outcome: Redirect, Location: loc, Reason: ReasonLoginRequired, Route: route}
	}

	if known && route.RequireAdmin && !sess.IsAdmin() {
		return Decision{Outcome: Redirect, Location: g.routes.LandingPath(), Reason: ReasonAdminRequired, Route: route}
	}

	return Decision{Outcome: Allow, Reason: ReasonAuthorized, Route: route}
}
