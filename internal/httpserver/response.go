package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"
)

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: msg})
}

// writeError maps service errors onto status codes and the
// {message, errors} body the storefront reads.
func writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Message: ve.Message, Errors: ve.Fields})
	case errors.Is(err, usersvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Message: "Invalid credentials"})
	case errors.Is(err, usersvc.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthenticated."})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse{Message: "This action is unauthorized."})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, errorResponse{Message: "Already exists"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal server error"})
	}
}

// bindJSON decodes the body or writes a 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Malformed JSON body"})
		return false
	}
	return true
}

// pathID parses a numeric path parameter; anything else is a 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
		return 0, false
	}
	return id, true
}
