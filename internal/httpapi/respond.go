package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/locale"
	"jjc-attendance/internal/logger"
)

// message writes {message} with the localized text of key.
func message(c *gin.Context, status int, key string) {
	c.JSON(status, gin.H{"message": locale.FromContext(c).Message(key)})
}

// fail renders err as {message, error?}. Internal failures are logged and,
// outside production, carry the underlying cause in "error".
func (s *Server) fail(c *gin.Context, err error, fallbackKey string) {
	kind := apperror.KindOf(err)
	body := gin.H{"message": locale.FromContext(c).Message(apperror.KeyOf(err, fallbackKey))}
	if kind == apperror.Internal {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		if !s.cfg.IsProduction() {
			body["error"] = cause(err).Error()
		}
	}
	c.AbortWithStatusJSON(kind.Status(), body)
}

func cause(err error) error {
	var e *apperror.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err
	}
	return err
}

func badRequest(c *gin.Context, key string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": locale.FromContext(c).Message(key)})
}
