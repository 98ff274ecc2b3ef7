package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
)

// getPrincipalFromContext берет из контекста gin имя текущего принципала. Устанавливается в
// middlewares.AuthRequired. В случае, если значения в контексте нет или ошибка утверждения
// типа - вернется пустая строка.
func getPrincipalFromContext(c *gin.Context) string {
	val, exist := c.Get(middlewares.CurrentPrincipalKey)
	if !exist {
		return ""
	}
	principal, ok := val.(string)
	if !ok {
		return ""
	}
	return principal
}

// parseIDParam парсит path-параметр :id.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return 0, false
	}
	return id, true
}

// abortWithServiceError переводит доменную ошибку в http статус. Оригинальная ошибка
// прикрепляется к контексту приватно - наружу уходит только текст статуса.
func abortWithServiceError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNotFoundOrNotPending):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrLockTimeout):
		// контенция на строчных блокировках: вся единица работы откатилась, можно повторять
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	_ = c.AbortWithError(status, err).SetType(gin.ErrorTypePrivate)
}
