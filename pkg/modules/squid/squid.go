// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// Package squid advertises the site web proxy to jobs. Nothing is installed on the gateway.
//
// # Section
//
//	[Squid]
//	enabled = True
//	location = squid.example.org:3128   # The port defaults to 3128.
//	policy = LRU
//	cache_size = 2048
//	memory_size = 256
package squid

import (
	"net"
	"strconv"

	"github.com/osgconf/osgconf/pkg/osgconf"
)

// DefaultPort is added to a location with no port.
const DefaultPort = "3128"

const (
	locationKey = "location"
	policyKey   = "policy"
	cacheKey    = "cache_size"
	memoryKey   = "memory_size"
)

var schema = osgconf.Schema{
	{Key: locationKey, Attr: "OSG_SQUID_LOCATION"},
	{Key: policyKey, Attr: "OSG_SQUID_POLICY", Default: "LRU"},
	{Key: cacheKey, Attr: "OSG_SQUID_CACHE_SIZE", Kind: osgconf.Int},
	{Key: memoryKey, Attr: "OSG_SQUID_MEM_CACHE", Kind: osgconf.Int},
}

type Module struct{ *osgconf.Base }

var (
	// Verify implementing interfaces.
	_ osgconf.Parser    = &Module{}
	_ osgconf.Validator = &Module{}
)

func New() *Module {
	return &Module{Base: osgconf.NewBase("squid", []string{"Squid"}, schema, osgconf.SeparatelyConfigurable())}
}

// Parse adds the default port to the location.
func (m *Module) Parse(osgconf.Config) error {
	if loc := m.StringValue(locationKey); m.IsSet(locationKey) {
		if _, _, err := net.SplitHostPort(loc); err != nil {
			m.SetValue(locationKey, net.JoinHostPort(loc, DefaultPort))
		}
	}
	return nil
}

func (m *Module) Validate(v *osgconf.Validation) {
	loc := m.StringValue(locationKey)
	host, port, err := net.SplitHostPort(loc)
	if err != nil {
		v.Errorf(locationKey, "%q is not host[:port]", loc)
		return
	}
	if !v.Domain(host, false) {
		v.Errorf(locationKey, "%q is not a valid domain", host)
	}
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		v.Errorf(locationKey, "%q is not a valid port", port)
	}
	for _, key := range []string{cacheKey, memoryKey} {
		if n := m.IntValue(key); n < 0 {
			v.Errorf(key, "must not be negative, got %v", n)
		}
	}
}
