package services

import (
	"strings"

	"influencer-battle/models"
)

// RouteDecision is what the shell should do with a navigation request.
type RouteDecision string

const (
	DecisionAllow      RouteDecision = "allow"
	DecisionWait       RouteDecision = "wait"
	DecisionLogin      RouteDecision = "login"
	DecisionOnboarding RouteDecision = "onboarding"
	DecisionForbidden  RouteDecision = "forbidden"
	DecisionHome       RouteDecision = "home"
)

// NavItem is one entry of the main navigation.
type NavItem struct {
	Label string            `json:"label"`
	Path  string            `json:"path"`
	Roles []models.UserRole `json:"-"`
}

var navItems = []NavItem{
	{Label: "Home", Path: "/home", Roles: []models.UserRole{models.RoleAdmin, models.RoleInfluencer}},
	{Label: "Influencers", Path: "/influencers", Roles: []models.UserRole{models.RoleAdmin, models.RoleInfluencer}},
	{Label: "Contests", Path: "/contests", Roles: []models.UserRole{models.RoleAdmin, models.RoleInfluencer}},
	{Label: "Settings", Path: "/settings", Roles: []models.UserRole{models.RoleAdmin, models.RoleInfluencer}},
}

// NavigationFor returns the nav items visible to user.
func NavigationFor(user *models.UserSession) []NavItem {
	if user == nil {
		return []NavItem{}
	}
	out := make([]NavItem, 0, len(navItems))
	for _, item := range navItems {
		for _, r := range item.Roles {
			if r == user.Role {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

type routeRule struct {
	pattern   string
	adminOnly bool
}

var appRoutes = []routeRule{
	{pattern: "/home"},
	{pattern: "/feed"},
	{pattern: "/influencers"},
	{pattern: "/influencers/:id"},
	{pattern: "/contests"},
	{pattern: "/contests/:id"},
	{pattern: "/settings"},
	{pattern: "/onboarding"},
	{pattern: "/admin", adminOnly: true},
}

// HomePath is where a signed-in user lands.
func HomePath(user *models.UserSession) string {
	if user != nil && user.IsAdmin() {
		return "/admin"
	}
	return "/influencers"
}

// Gate decides whether route may be shown for the given session.
func Gate(state SessionState, user *models.UserSession, route string) RouteDecision {
	route = "/" + strings.Trim(route, "/")

	if state == StateLoading {
		return DecisionWait
	}
	if state != StateAuthenticated || user == nil {
		if route == "/login" {
			return DecisionAllow
		}
		return DecisionLogin
	}
	if route == "/login" || route == "/" {
		return DecisionHome
	}

	rule, ok := matchRoute(route)
	if !ok {
		return DecisionHome
	}
	if !user.IsAdmin() && !user.HasProfile && route != "/onboarding" {
		return DecisionOnboarding
	}
	if rule.adminOnly && !user.IsAdmin() {
		return DecisionForbidden
	}
	return DecisionAllow
}

func matchRoute(route string) (routeRule, bool) {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for _, rule := range appRoutes {
		pattern := strings.Split(strings.Trim(rule.pattern, "/"), "/")
		if len(pattern) != len(parts) {
			continue
		}
		matched := true
		for i, seg := range pattern {
			if strings.HasPrefix(seg, ":") {
				if parts[i] == "" {
					matched = false
					break
				}
				continue
			}
			if seg != parts[i] {
				matched = false
				break
			}
		}
		if matched {
			return rule, true
		}
	}
	return routeRule{}, false
}
