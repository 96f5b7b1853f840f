package auth

import (
	"strings"
)

// RouteRule maps a path pattern and method set to an access
// requirement. Patterns are exact paths or prefixes ending in "/**".
// An empty Methods slice matches every method. Public rules skip
// authentication entirely, rules with Roles require one of them, and a
// rule with neither requires any authenticated principal.
type RouteRule struct {
	Pattern string
	Methods []string
	Roles   []UserRole
	Public  bool
}

func (r RouteRule) matches(method, path string) bool {
	if !r.matchesMethod(method) {
		return false
	}

	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}

	return path == r.Pattern
}

func (r RouteRule) matchesMethod(method string) bool {
	if len(r.Methods) == 0 {
		return true
	}
	for _, m := range r.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// specificity orders overlapping rules, longer literal prefixes win.
func (r RouteRule) specificity() int {
	pattern, _ := strings.CutSuffix(r.Pattern, "/**")
	return len(pattern)
}

// RoutePolicy is an ordered rule table evaluated per request. The most
// specific matching rule wins, declaration order breaks ties. Paths no
// rule matches default to requiring an authenticated principal.
type RoutePolicy struct {
	rules []RouteRule
}

func NewRoutePolicy(rules ...RouteRule) *RoutePolicy {
	return &RoutePolicy{rules: rules}
}

// Evaluate returns nil when the principal may access the route,
// ErrUnauthenticated when a session is required but missing, and
// ErrForbidden when the session role does not satisfy the rule.
func (p *RoutePolicy) Evaluate(method, path string, principal *AuthenticatedPrincipal) error {
	rule, ok := p.match(method, path)
	if !ok {
		// default deny for anonymous traffic
		if principal == nil {
			return ErrUnauthenticated
		}
		return nil
	}

	if rule.Public {
		return nil
	}

	if principal == nil {
		return ErrUnauthenticated
	}

	if len(rule.Roles) == 0 {
		return nil
	}

	for _, role := range rule.Roles {
		if principal.Role == role {
			return nil
		}
	}

	return ErrForbidden
}

func (p *RoutePolicy) match(method, path string) (RouteRule, bool) {
	var best RouteRule
	found := false

	for _, rule := range p.rules {
		if !rule.matches(method, path) {
			continue
		}
		if !found || rule.specificity() > best.specificity() {
			best = rule
			found = true
		}
	}

	return best, found
}

// DefaultRoutePolicy is the access table for the public website API:
// login and recovery are open, content reads are open, everything else
// under the API requires staff roles.
func DefaultRoutePolicy() *RoutePolicy {
	return NewRoutePolicy(
		RouteRule{Pattern: "/api/v1/auth/login", Methods: []string{"POST"}, Public: true},
		RouteRule{Pattern: "/api/v1/auth/forgot-password", Methods: []string{"POST"}, Public: true},
		RouteRule{Pattern: "/api/v1/auth/reset-password/validate", Methods: []string{"GET"}, Public: true},
		RouteRule{Pattern: "/api/v1/auth/resend-verification", Methods: []string{"POST"}, Roles: []UserRole{RoleEditor, RoleAdmin}},
		RouteRule{Pattern: "/api/v1/auth/reset-password", Methods: []string{"POST"}, Roles: []UserRole{RoleEditor, RoleAdmin}},
		RouteRule{Pattern: "/api/v1/auth/change-password", Methods: []string{"POST"}, Roles: []UserRole{RoleEditor, RoleAdmin}},
		RouteRule{Pattern: "/api/v1/**", Methods: []string{"GET"}, Public: true},
		RouteRule{Pattern: "/api/v1/**", Roles: []UserRole{RoleAdmin}},
	)
}
