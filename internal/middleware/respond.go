package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/pageshell/internal/domain"
	"github.com/simp-lee/pageshell/internal/pkg"
)

// ErrorPage is the data passed to errors/<status>.html templates.
type ErrorPage struct {
	Status  int
	Title   string
	Message string
}

// errorTemplates maps HTTP status codes to their error pages. Other codes
// use the 500 page with their own status.
var errorTemplates = map[int]string{
	http.StatusBadRequest:          "errors/400.html",
	http.StatusNotFound:            "errors/404.html",
	http.StatusTooManyRequests:     "errors/429.html",
	http.StatusInternalServerError: "errors/500.html",
}

// ErrorTemplate returns the error page rendered for status.
func ErrorTemplate(status int) string {
	if name, ok := errorTemplates[status]; ok {
		return name
	}
	return errorTemplates[http.StatusInternalServerError]
}

// WantsHTML reports whether an error response should be an HTML page. API
// paths always get JSON; elsewhere the Accept header must name text/html.
func WantsHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(strings.ToLower(c.GetHeader("Accept")), "text/html")
}

// AbortWithError stops the chain and writes status either as the error page
// or as the JSON envelope, depending on WantsHTML.
func AbortWithError(c *gin.Context, status int, message string) {
	c.Abort()
	if WantsHTML(c) {
		renderErrorPage(c, status, message)
		return
	}
	c.JSON(status, pkg.Response{Code: status, Message: message, Data: nil})
}

// AbortWithAppError is AbortWithError for err mapped through
// domain.HTTPStatusCode. Only AppError messages reach the client.
func AbortWithAppError(c *gin.Context, err error) {
	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	AbortWithError(c, domain.HTTPStatusCode(err), msg)
}

// renderErrorPage falls back to plain text when no HTML renderer is
// configured.
func renderErrorPage(c *gin.Context, status int, message string) {
	defer func() {
		if r := recover(); r != nil {
			c.Data(status, "text/plain; charset=utf-8",
				[]byte(fmt.Sprintf("%d %s", status, http.StatusText(status))))
		}
	}()
	c.HTML(status, ErrorTemplate(status), ErrorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: message,
	})
}
