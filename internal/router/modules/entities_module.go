package modules

import "github.com/gin-gonic/gin"

// CRUD registers list/get/create/update/delete routes at a path.
type CRUD interface {
	Register(rg *gin.RouterGroup, path string)
}

type EntityRoute struct {
	Path    string
	Handler CRUD
}

// EntitiesModule mounts the generic CRUD routes of every entity, all protected.
type EntitiesModule struct {
	Routes []EntityRoute
	Guard  []gin.HandlerFunc
}

func NewEntitiesModule(guard []gin.HandlerFunc, routes ...EntityRoute) *EntitiesModule {
	return &EntitiesModule{Routes: routes, Guard: guard}
}

func (m *EntitiesModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/", m.Guard...)
	for _, r := range m.Routes {
		r.Handler.Register(auth, r.Path)
	}
}
