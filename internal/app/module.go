package app

import "github.com/gin-gonic/gin"

// Module registers its JSON endpoints under api (/api/v1) and its HTML
// documents under pages (/).
type Module interface {
	RegisterRoutes(api *gin.RouterGroup, pages *gin.RouterGroup)
}
