// Package handlers contains HTTP request handlers for the greeting service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GreetingField is the form field read by GreetingHandler
const GreetingField = "name"

// GreetingContentType is sent verbatim, without a charset parameter
const GreetingContentType = "text/html"

// RenderGreeting builds the greeting page for name.
// name is interpolated as-is; no HTML escaping is applied.
func RenderGreeting(name string) []byte {
	page := make([]byte, 0, 48+len(name))
	page = append(page, "<html><body>"...)
	page = append(page, "<h1>Hello, "+name+"!</h1>"...)
	page = append(page, "</body></html>"...)
	return page
}

// GreetingHandler greets the name submitted in a form-encoded POST body.
// A missing field renders as the empty string. Write failures are recorded
// on the context and the request is aborted.
func GreetingHandler(c *gin.Context) {
	name := c.PostForm(GreetingField)

	c.Header("Content-Type", GreetingContentType)
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write(RenderGreeting(name)); err != nil {
		_ = c.Error(err)
		c.Abort()
	}
}
