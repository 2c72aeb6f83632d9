package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// ServiceResult is what every handler returns. Successful results are
// rendered as their payload; error results are rendered as an
// {"error": message} envelope, with optional field-level details.
type ServiceResult struct {
	StatusCode int    `json:"code"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	version      string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

// Body renders the wire shape for this result.
func (result *ServiceResult) Body() any {
	if result.IsError() {
		if result.Data != nil {
			return gin.H{
				"error":   result.Message,
				"details": result.Data,
			}
		}
		return gin.H{"error": result.Message}
	}

	if result.Data != nil {
		return result.Data
	}

	return gin.H{"message": result.Message}
}

func (result *ServiceResult) IsSuccess() bool {
	return result.StatusCode >= 200 && result.StatusCode < 300
}

func (result *ServiceResult) IsError() bool {
	return result.StatusCode >= 400
}
