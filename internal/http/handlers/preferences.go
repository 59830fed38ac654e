package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/gamerec-backend/internal/domain"
	"github.com/yungbote/gamerec-backend/internal/http/response"
	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/services"
)

type PreferencesHandler struct {
	log *logger.Logger
	svc services.PreferencesService
}

func NewPreferencesHandler(log *logger.Logger, svc services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{log: log.With("handler", "PreferencesHandler"), svc: svc}
}

// GET /api/preferences
func (h *PreferencesHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}

// PUT /api/preferences
func (h *PreferencesHandler) Put(c *gin.Context) {
	var body types.Preferences
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, bindError(err))
		return
	}
	p, err := h.svc.Set(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()), body)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": p})
}
