package router

import "github.com/gin-gonic/gin"

// APIPrefix is the group every module is mounted under.
const APIPrefix = "/api"

// Registry collects modules and mounts them on the engine once.
type Registry struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	modules []Module
	mounted bool
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group(APIPrefix)}
}

// Add queues modules for mounting. Nil modules are skipped so optional
// features can be passed through unconditionally.
func (r *Registry) Add(mods ...Module) {
	for _, m := range mods {
		if m != nil {
			r.modules = append(r.modules, m)
		}
	}
}

// RegisterAll mounts the queued modules and returns their names in mount order.
// Later calls mount nothing, since gin panics on a route registered twice.
func (r *Registry) RegisterAll() []string {
	if r.mounted {
		return nil
	}
	r.mounted = true
	names := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		m.Register(r.API)
		names = append(names, m.Name())
	}
	return names
}
