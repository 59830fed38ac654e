package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/http/response"
	"github.com/yungbote/gamerec-backend/internal/platform/ctxutil"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/services"
)

type RecommendationHandler struct {
	log *logger.Logger
	svc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, svc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{log: log.With("handler", "RecommendationHandler"), svc: svc}
}

const defaultK = 10

type recommendBody struct {
	Query         string `json:"query" binding:"max=2000"`
	K             *int   `json:"k"`
	ExcludeUnsafe *bool  `json:"exclude_unsafe"`
}

// POST /api/recommendations
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	var body recommendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondAPIError(c, bindError(err))
		return
	}
	req := services.RecommendRequest{Query: body.Query, K: defaultK, ExcludeUnsafe: body.ExcludeUnsafe}
	if body.K != nil {
		req.K = *body.K
	}
	res, err := h.svc.Recommend(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/games/:id/similar?k=
func (h *RecommendationHandler) Similar(c *gin.Context) {
	id, err := gameIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	k, err := intQuery(c, "k", defaultK)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.svc.Similar(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()), id, k)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}
