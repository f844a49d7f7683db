// context.go defines the Context interface for extension access to the
// project.
//
// Extensions receive Context during Init(), not at construction, so they
// can register commands before the project (config, flags directory) has
// been loaded.

package extension

import (
	"github.com/jpl-au/flagsync/internal/config"
	"github.com/jpl-au/flagsync/internal/service"
)

// Context provides extensions controlled access to the loaded project.
type Context interface {
	// Service returns the flag service for the project.
	Service() service.Service

	// Config returns the effective configuration.
	Config() *config.Config
}

// extContext implements Context.
type extContext struct {
	svc service.Service
}

// NewContext creates a new extension context around svc.
func NewContext(svc service.Service) Context {
	return &extContext{svc: svc}
}

// Service returns the flag service.
func (c *extContext) Service() service.Service {
	return c.svc
}

// Config returns the configuration the service was built with.
func (c *extContext) Config() *config.Config {
	return c.svc.Config()
}
