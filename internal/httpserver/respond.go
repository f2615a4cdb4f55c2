package httpserver

import (
	"errors"
	"net/http"

	"freshcart/internal/domain"
	"freshcart/internal/gateway"
	usersvc "freshcart/internal/service/user"
	"github.com/gin-gonic/gin"
)

// respondErr maps service errors onto status codes and the error envelope.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrNotPaid),
		errors.Is(err, domain.ErrRefunded),
		errors.Is(err, domain.ErrNotCancellable),
		errors.Is(err, domain.ErrCategoryInUse),
		errors.Is(err, gateway.ErrSignature):
		failWith(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		failWith(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		failWith(c, http.StatusForbidden, "access denied")
	case errors.Is(err, usersvc.ErrInvalidCredentials),
		errors.Is(err, usersvc.ErrInvalidToken):
		failWith(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrGateway):
		failWith(c, http.StatusBadGateway, "payment processor error")
	default:
		failWith(c, http.StatusInternalServerError, "server error")
	}
}

func failWith(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func badRequest(c *gin.Context, message string) {
	failWith(c, http.StatusBadRequest, message)
}
