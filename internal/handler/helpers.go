package handler

import (
	"errors"
	"net/http"
	"reflect"

	"autopecas/internal/apierror"
	"autopecas/internal/infra"
	"autopecas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetros inválidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramUUID parses a path parameter, answering 400 when it is not a UUID.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido: "+name))
		return uuid.Nil, false
	}
	return id, true
}

// responderErro maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is handed to middleware.ErrorHandler, which
// logs it and answers a generic 500.
func responderErro(c *gin.Context, err error) {
	var dup *service.ImportacaoDuplicadaError
	var inv *service.DocumentoInvalidoError
	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, apierror.ConflictError{
			Detail:     err.Error(),
			ResourceID: dup.NotaID.String(),
			Status:     string(dup.Status),
		})
	case errors.As(err, &inv):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewDocument(err.Error(), inv.Resultado))
	case errors.Is(err, infra.ErrLockOcupado):
		c.Header("Retry-After", "5")
		c.JSON(http.StatusConflict, apierror.New("documento já está sendo importado por outra requisição; tente novamente em instantes"))
	case errors.Is(err, service.ErrNaoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrValidacao):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		log.Debug().Err(err).Str("path", c.FullPath()).Msg("erro sem mapeamento")
		_ = c.Error(err)
	}
}
