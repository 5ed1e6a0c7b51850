package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
)

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// AbortWithError writes the error envelope with the status matching err.
func AbortWithError(c *gin.Context, err error) {
	status, code := statusFor(err)
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": err.Error()}})
}

func statusFor(err error) (int, string) {
	var bindErr *bindingError
	switch {
	case errors.As(err, &bindErr):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, calldetaildomain.ErrAccountResolution):
		return http.StatusUnprocessableEntity, calldetaildomain.ErrAccountResolution.Error()
	case errors.Is(err, calldetaildomain.ErrCallTypeResolution):
		return http.StatusUnprocessableEntity, calldetaildomain.ErrCallTypeResolution.Error()
	case errors.Is(err, calldetaildomain.ErrBatchRejected):
		return http.StatusBadRequest, calldetaildomain.ErrBatchRejected.Error()
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

var errNotFound = errors.New("not_found")

type bindingError struct {
	err error
}

func (e *bindingError) Error() string { return e.err.Error() }

func (e *bindingError) Unwrap() error { return e.err }
