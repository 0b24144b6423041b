package router

import "github.com/gin-gonic/gin"

// Module is a feature that mounts its routes under the API group.
// Name identifies it in the startup log.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
