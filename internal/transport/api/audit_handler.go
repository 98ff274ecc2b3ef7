package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	svs AuditServicer
}

func NewAuditHandler(svs AuditServicer) *AuditHandler {
	return &AuditHandler{
		svs: svs,
	}
}

// RecordAuditParams имя сущности и old/new значения декларируются вызывающим как есть.
type RecordAuditParams struct {
	Action         string  `json:"action" binding:"required,oneof=CREATE UPDATE VIEW APPROVE"`
	AffectedEntity string  `json:"affected_entity" binding:"required,max_bytes=64"`
	AffectedID     int64   `json:"affected_id" binding:"required"`
	OldValue       *string `json:"old_value"`
	NewValue       *string `json:"new_value"`
}

type AuditQueryParams struct {
	Start     time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End       time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
	Principal *string   `form:"principal"`
}

type AuditEntryResponse struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Principal      string    `json:"principal"`
	Action         string    `json:"action"`
	AffectedEntity string    `json:"affected_entity"`
	AffectedID     int64     `json:"affected_id"`
	OldValue       *string   `json:"old_value,omitempty"`
	NewValue       *string   `json:"new_value,omitempty"`
	Origin         *string   `json:"origin,omitempty"`
}

// Record POST RouteGroup + AuditRoute.
func (h *AuditHandler) Record(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	var params RecordAuditParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entry, err := h.svs.Record(reqCtx, principal, service.RecordAuditArgs{
		Action:         domain.AuditActionType(params.Action),
		AffectedEntity: params.AffectedEntity,
		AffectedID:     params.AffectedID,
		OldValue:       params.OldValue,
		NewValue:       params.NewValue,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newAuditEntryResponse(entry))
}

// Index GET RouteGroup + AuditRoute.
func (h *AuditHandler) Index(c *gin.Context) {
	principal := getPrincipalFromContext(c)

	var params AuditQueryParams
	if bindErr := c.ShouldBindQuery(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entries, err := h.svs.Query(reqCtx, principal, repoargs.AuditQuery{
		Start:     params.Start,
		End:       params.End,
		Principal: params.Principal,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	if len(entries) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]AuditEntryResponse, len(entries))
	for i, entry := range entries {
		response[i] = *newAuditEntryResponse(&entry)
	}

	c.JSON(http.StatusOK, response)
}

func newAuditEntryResponse(entry *domain.AuditEntry) *AuditEntryResponse {
	return &AuditEntryResponse{
		ID:             entry.ID,
		CreatedAt:      entry.CreatedAt,
		Principal:      entry.Principal,
		Action:         string(entry.Action),
		AffectedEntity: entry.AffectedEntity,
		AffectedID:     entry.AffectedID,
		OldValue:       entry.OldValue,
		NewValue:       entry.NewValue,
		Origin:         entry.Origin,
	}
}
