package handler

import (
	"errors"
	"net/http"

	"github.com/CuasDev/fel/internal/apierror"
	"github.com/CuasDev/fel/internal/billing"
	"github.com/CuasDev/fel/internal/service"
	"github.com/CuasDev/fel/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindJSON decodes the request body. Returns false and writes a 400 when the
// body is not valid JSON; the caller should return immediately.
// Field rules are checked by the services, which know the order in which
// domain preconditions must be reported.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	return true
}

// bindAndValidate binds the JSON body and runs its validator tags, for
// requests that go straight to a service without further field checks.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if !bindJSON(c, req) {
		return false
	}
	if fields := validation.Struct(req); fields != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery decodes query parameters into filter.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parámetros de consulta inválidos"))
		return false
	}
	return true
}

// paramID parses the :id path parameter.
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps a service error onto the HTTP response. Anything it does
// not recognise is attached to the context for ErrorHandler to log and turn
// into a generic 500.
func writeError(c *gin.Context, err error) {
	var (
		verr       *service.ValidationError
		nf         *service.NotFoundError
		conflict   *service.ConflictError
		transition *billing.TransitionError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, apierror.NewValidation(verr.Fields))
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, apierror.New(conflict.Message))
	case errors.As(err, &transition):
		c.JSON(http.StatusBadRequest, apierror.New(transition.Error()))
	case errors.Is(err, billing.ErrDeleteNotAllowed):
		c.JSON(http.StatusBadRequest, apierror.New("Solo se pueden eliminar facturas canceladas"))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, apierror.New(nf.Error()))
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	case errors.Is(err, service.ErrQueueUnavailable):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
	}
}
