package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxRequestBodyBytes bounds a decoded request body. A large multi-itinerary
// price request stays well under it.
const maxRequestBodyBytes = 4 << 20

// errEmptyBody is returned when a JSON body is required but none was sent.
var errEmptyBody = errors.New("request body is empty")

// BuildRequest decodes the JSON body of c into a new T and applies its binding rules.
func BuildRequest[T any](c *gin.Context) (*T, error) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil, errEmptyBody
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBodyBytes)

	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
