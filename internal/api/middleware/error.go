package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/therabot/therabot/internal/api/dto"
	"github.com/therabot/therabot/internal/core/service"
)

// MsgInternalError is the only text clients see for unexpected failures.
const MsgInternalError = "Server error occurred. Please try again later."

// ErrorHandler recovers panics and turns the last error attached with
// c.Error into a JSON envelope. Causes of internal errors are logged and
// never written to the response.
func ErrorHandler(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"panic":  r,
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
				}).Error("Recovered from panic")
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Envelope{
					Success: false,
					Message: MsgInternalError,
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := translate(err)
		if status == http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}).Error("Request failed")
		}

		c.JSON(status, dto.Envelope{
			Success: false,
			Message: message,
		})
	}
}

// translate maps an error to its HTTP status and client-facing message.
func translate(err error) (int, string) {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		return http.StatusInternalServerError, MsgInternalError
	}

	var svcErr *service.Error
	errors.As(err, &svcErr)

	switch kind {
	case service.KindInvalidInput:
		return http.StatusBadRequest, svcErr.Message
	case service.KindAlreadyExists:
		return http.StatusConflict, svcErr.Message
	case service.KindUnauthenticated:
		return http.StatusUnauthorized, svcErr.Message
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}
