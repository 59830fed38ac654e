package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/http/response"
	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/services"
)

type LikesHandler struct {
	log *logger.Logger
	svc services.LikesService
}

func NewLikesHandler(log *logger.Logger, svc services.LikesService) *LikesHandler {
	return &LikesHandler{log: log.With("handler", "LikesHandler"), svc: svc}
}

// GET /api/likes?starred=
func (h *LikesHandler) List(c *gin.Context) {
	starred, err := boolQuery(c, "starred")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	likes, err := h.svc.List(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()), starred != nil && *starred)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondList(c, "likes", likes, len(likes))
}

// POST /api/likes/:id
func (h *LikesHandler) Like(c *gin.Context) {
	id, err := gameIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	like, err := h.svc.Like(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"like": like})
}

// DELETE /api/likes/:id
func (h *LikesHandler) Unlike(c *gin.Context) {
	id, err := gameIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.svc.Unlike(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/likes/:id/star
func (h *LikesHandler) ToggleStar(c *gin.Context) {
	id, err := gameIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	like, err := h.svc.ToggleStar(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"like": like})
}
