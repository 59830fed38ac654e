package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError aborts with the error envelope. The request id is included so
// a client can quote a failure back to an operator.
func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Message: http.StatusText(status), Code: code}
	if err != nil {
		body.Message = err.Error()
	}
	if c.Request != nil {
		if req, ok := ctxutil.RequestFrom(c.Request.Context()); ok {
			body.RequestID = req.ID
		}
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondList writes {key: items, "count": n}.
func RespondList(c *gin.Context, key string, items any, n int) {
	c.JSON(http.StatusOK, gin.H{key: items, "count": n})
}
