package utils

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/openhelpdesk/helpdesk/internal/shared/constants"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
)

// APIResponse is the JSON envelope returned by every endpoint.
type APIResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Message  string      `json:"message,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SuccessWithWarnings is used when the write committed but a side effect,
// such as a notification email, did not go through.
func SuccessWithWarnings(c *gin.Context, statusCode int, message string, data interface{}, warnings []string) {
	c.JSON(statusCode, APIResponse{
		Success:  true,
		Data:     data,
		Message:  message,
		Warnings: warnings,
	})
}

func CreatedResponse(c *gin.Context, data interface{}, message ...string) {
	msg := "Resource created successfully"
	if len(message) > 0 {
		msg = message[0]
	}
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
		Message: msg,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    "error",
			Message: message,
		},
	})
}

// ErrorResponseWithError renders AppErrors with their own status and type.
// Anything else becomes a generic 500 so internals never reach the client.
func ErrorResponseWithError(c *gin.Context, err error) {
	statusCode := http.StatusInternalServerError
	info := ErrorInfo{
		Type:    string(errors.ErrorTypeInternal),
		Message: constants.ErrMsgInternalServerError,
	}

	if appErr := errors.GetAppError(err); appErr != nil {
		statusCode = appErr.Code
		info = ErrorInfo{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Details: appErr.Details,
		}
		if appErr.Type == errors.ErrorTypeInternal {
			info.Details = ""
		}
	}

	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &info,
	})
}

// BindErrorResponse reports a request that failed binding. Validator
// failures list the offending fields in Details.
func BindErrorResponse(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field())+":"+fe.Tag())
		}
		ErrorResponseWithError(c, errors.NewValidationError("invalid request", strings.Join(fields, ",")))
		return
	}
	ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
}

func ListSuccessResponse(c *gin.Context, items interface{}, total int64, page, pageSize int, message ...string) {
	resp := APIResponse{
		Success: true,
		Data: ListResponse{
			Items:      items,
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: TotalPages(total, pageSize),
		},
	}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	c.JSON(http.StatusOK, resp)
}

func NoContentResponse(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
