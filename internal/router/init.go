package router

import (
	handlers "github.com/oksasatya/user-account-service/internal/interface/http"
	"github.com/oksasatya/user-account-service/internal/interface/middleware"
	"github.com/oksasatya/user-account-service/internal/router/modules"
)

// Deps carries the constructed handlers the modules need.
type Deps struct {
	Users          *handlers.UserHandler
	Health         *handlers.HealthHandler
	Tokens         middleware.TokenDecoder
	MetricsEnabled bool
}

// InitModules registers every application module with the registry.
// It should be called once during application startup.
func InitModules(r *Registry, deps Deps) {
	r.Add(modules.NewHealthModule(deps.Health))
	r.Add(modules.NewUserModule(deps.Users, deps.Tokens))
	if deps.MetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
