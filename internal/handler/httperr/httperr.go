package httperr

import (
	"log/slog"
	"net/http"

	"bot-for-order/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code      string `json:"code,omitempty"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable,omitempty"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	abort(c, err, resp)
}

// AbortWithAppError derives status, code and message from the application error
// err wraps. Errors without a code become a 500 and are logged with their stack.
func AbortWithAppError(c *gin.Context, err error) {
	if err == nil {
		panic("AbortWithAppError: err cannot be nil")
	}

	app := errs.Classify(err)
	if app == nil {
		slog.Error("unclassified error",
			"path", c.Request.URL.Path,
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, 5))
		resp := Response{Status: http.StatusInternalServerError}
		resp.Error.Message = "Internal server error"
		abort(c, err, resp)
		return
	}

	resp := Response{Status: app.Status()}
	resp.Error.Code = app.Code
	resp.Error.Message = app.Message
	resp.Error.Retryable = app.Retryable()
	if app.Kind == errs.KindInternal {
		slog.Error("internal error", "path", c.Request.URL.Path, "code", app.Code, "error", err.Error())
	}
	abort(c, err, resp)
}

func abort(c *gin.Context, err error, resp Response) {
	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(resp.Status, resp)
}
