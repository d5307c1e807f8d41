package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/billgen/internal/logger"
)

// APIResponse is the JSON envelope for every non-file response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondError(c echo.Context, status int, message string, err error) error {
	ctx := c.Request().Context()
	resp := APIResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
		if status >= http.StatusInternalServerError {
			logger.ErrorLog(ctx, err, "%s", message)
		} else {
			logger.WarnLog(ctx, "%s: %v", message, err)
		}
	}
	return c.JSON(status, resp)
}

func respondJSON(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{Success: true, Data: data})
}
