package catalog

import (
	"errors"
	"net/http"

	"github.com/bhutan-travel/core/internal/modules/itinerary"
	"github.com/bhutan-travel/core/internal/pkg/authz"
	"github.com/bhutan-travel/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WriteError answers a failed admin mutation with the result contract.
// Unexpected errors are logged and replaced by a generic message.
func WriteError(c *gin.Context, logger *zap.Logger, err error) {
	var verrs itinerary.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		response.Invalid(c, "The itinerary is not valid", verrs)
	case errors.Is(err, authz.ErrUnauthorized):
		response.Fail(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, ErrNotFound):
		response.Fail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrSlugTaken):
		response.Fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrSlugImmutable), errors.Is(err, ErrInvalidInput):
		response.Fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("catalog operation failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.Fail(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}
