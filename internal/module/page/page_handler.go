package page

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pageshell/internal/domain"
	"github.com/simp-lee/pageshell/internal/middleware"
)

const htmlContentType = "text/html; charset=utf-8"

// PageHandler serves the layout shell of every registered page.
type PageHandler struct {
	svc    *Service
	logger *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(svc *Service, logger *slog.Logger) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandler{svc: svc, logger: logger}
}

// Show renders the page registered for the request path.
// GET <path>, HEAD <path>
func (h *PageHandler) Show(c *gin.Context) {
	body, tree, err := h.svc.Render(c.Request.URL.Path)
	if err != nil {
		appErr := domain.FromRouteError(err)
		if domain.IsInternal(appErr) {
			h.logger.ErrorContext(c.Request.Context(), "render page",
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err),
			)
		}
		middleware.AbortWithAppError(c, appErr)
		return
	}

	c.Header("X-Layout", tree.Layout.DisplayName())
	c.Data(http.StatusOK, htmlContentType, body)
}
