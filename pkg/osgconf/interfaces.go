// Copyright: This file is part of osgconf, released under https://github.com/osgconf/osgconf/blob/main/LICENSE

// package osgconf contains the contract shared by configuration modules.
//
// A 'module' owns one INI section of the site configuration and contributes canonical attributes
// to the host attribute map. Every module embeds a [Base] which holds its schema, state and attributes.
// The phase helpers [Parse], [Validate], [Apply] and [Serialize] implement the shared behavior:
// they gate on the module [State] once per phase and then call the optional capabilities
// the module implements: [Parser], [Validator], [Applier], [Provider], [Resolver], [Serializer].
//
// Modules never parse sections owned by other modules. Values one module needs from another
// are published by a [Provider] and delivered to a [Resolver] after every module is parsed.
package osgconf

import (
	"context"

	"gopkg.in/ini.v1"
)

// Module is a configuration module.
//
// Implemented by embedding *[Base].
type Module interface {
	Name() string                 // Name of the module, unique in the registry.
	Sections() []string           // Sections owned by the module, the first is primary.
	Schema() Schema               // Schema of the primary section.
	SeparatelyConfigurable() bool // True if an operator may apply this module on its own.
	State() State                 // State after parsing.
	Attributes() Attributes       // Attributes, empty unless Enabled.
	Core() *Base                  // Core returns the shared module state.
}

// Parser is optionally implemented by modules that read more than their schema fields.
// Called after the schema fields are read, only when the module is Enabled.
type Parser interface {
	Parse(cfg Config) error
}

// Validator is optionally implemented by modules with checks beyond required options.
// Called only when the module is Enabled.
type Validator interface {
	Validate(v *Validation)
}

// Applier is optionally implemented by modules that change the host.
// Called only when the module is Enabled. Apply must be safe to repeat on a configured host.
type Applier interface {
	Apply(ctx context.Context, host Host, global Attributes) error
}

// Provider is optionally implemented by modules that publish values for other modules.
type Provider interface {
	// Provides lists the keys this module may publish.
	Provides() []string
	// Provide returns published values. Called whenever the section is present, whatever the state.
	Provide(cfg Config) map[string]string
}

// Resolver is optionally implemented by modules that derive values after parsing.
// Called only when the module is Enabled, after every module providing one of its Needs.
type Resolver interface {
	// Needs lists the provider keys this module reads.
	Needs() []string
	Resolve(r Resolution) error
}

// Serializer is optionally implemented by modules that write options not covered by their schema.
// It returns the number of primary settings written.
type Serializer interface {
	Serialize(pairs Attributes, section *ini.Section) (int, error)
}

const (
	// InstallRootEnv names the environment variable holding the install root.
	InstallRootEnv = "OSG_LOCATION"
	// DefaultInstallRoot is used when neither the configuration nor the environment sets the install root.
	DefaultInstallRoot = "/opt/osg"
)

// Resolution gives a Resolver access to provided values and the environment.
type Resolution interface {
	// Lookup returns a value published by a Provider.
	Lookup(key string) (string, bool)
	// Getenv returns an environment variable, "" if unset.
	Getenv(key string) string
}

// Host performs side effects during the apply phase.
type Host interface {
	// ConfigureService runs a setup script from the setup directory.
	// ok is false if the script ran and failed, err is set if it could not be run.
	ConfigureService(ctx context.Context, script string, args ...string) (ok bool, err error)
	// EnableService enables a service with the host service manager.
	EnableService(ctx context.Context, name string) error
	// DisableService disables a service with the host service manager.
	DisableService(ctx context.Context, name string) error
	// ServiceEnabled reports whether the service manager has the service enabled.
	ServiceEnabled(ctx context.Context, name string) (bool, error)
	// WriteFile atomically replaces a file, mode 0644.
	WriteFile(path string, data []byte) error
}
