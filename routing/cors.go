package routing

// CorsPolicy is the cross-origin access policy attached to a handler method.
// Policies live in the registry's side table and are resolved by downstream
// layers after dispatch.
type CorsPolicy struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// AllowAllCorsPolicy is the permissive policy used for the pre-flight
// ambiguous match sentinel
var AllowAllCorsPolicy = &CorsPolicy{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"*"},
	AllowedHeaders:   []string{"*"},
	AllowCredentials: true,
}

// AllowsOrigin reports whether the policy permits the given origin
func (p *CorsPolicy) AllowsOrigin(origin string) bool {
	for _, o := range p.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
