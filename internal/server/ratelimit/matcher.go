package ratelimit

import "strings"

// unlimited lists health check and scrape routes that never count against a client
var unlimited = map[string]bool{
	"GET /health":  true,
	"GET /metrics": true,
}

var unlimitedConfig = EndpointConfig{}

// MatchEndpoint returns the configuration governing method on path, or nil
// when the default limit applies. Exact paths win over prefixes; among
// prefixes the longest wins.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimited[method+" "+path] {
		cfg := unlimitedConfig
		return &cfg
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			if best == nil || len(c.Path) > len(best.Path) {
				best = c
			}
		}
	}
	return best
}
