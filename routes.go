package gatekeeper

import "strings"

// routeRule binds one path prefix to a protection tier. Rules are evaluated
// in order; the first match wins.
type routeRule struct {
	prefix string
	class  RouteClass
}

type routeTable struct {
	rules            []routeRule
	authExchangePath string
	loginPath        string
	adminHome        string
	homePath         string
}

// The table is declarative: auth exchange and public read endpoints are
// carved out before the broader protected prefixes so order carries the
// exclusion semantics.
func newRouteTable(cfg RouteConfig) *routeTable {
	rules := make([]routeRule, 0, 4+len(cfg.PublicAPIPrefixes)+len(cfg.ProtectedAPIPrefixes))

	rules = append(rules, routeRule{prefix: cfg.AuthExchangePath, class: RoutePublic})
	for _, p := range cfg.PublicAPIPrefixes {
		rules = append(rules, routeRule{prefix: p, class: RoutePublic})
	}
	rules = append(rules, routeRule{prefix: cfg.AdminPagePrefix, class: RouteAdminPage})
	for _, p := range cfg.ProtectedAPIPrefixes {
		rules = append(rules, routeRule{prefix: p, class: RouteProtectedAPI})
	}

	return &routeTable{
		rules:            rules,
		authExchangePath: cfg.AuthExchangePath,
		loginPath:        cfg.LoginPath,
		adminHome:        cfg.AdminHome,
		homePath:         cfg.HomePath,
	}
}

func (t *routeTable) classify(path string) RouteClass {
	for _, rule := range t.rules {
		if matchesPrefix(path, rule.prefix) {
			return rule.class
		}
	}
	return RoutePublic
}

func (t *routeTable) isAuthExchange(path string) bool {
	return matchesPrefix(path, t.authExchangePath)
}

func (t *routeTable) isLoginPage(path string) bool {
	return path == t.loginPath
}

// matchesPrefix matches whole path segments: "/admin" matches "/admin" and
// "/admin/posts" but never "/administrator".
func matchesPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
