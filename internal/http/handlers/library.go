package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/http/response"
	"github.com/yungbote/gamerec-backend/internal/platform/logger"
	"github.com/yungbote/gamerec-backend/internal/services"
)

type LibraryHandler struct {
	log *logger.Logger
	svc services.LibraryService
}

func NewLibraryHandler(log *logger.Logger, svc services.LibraryService) *LibraryHandler {
	return &LibraryHandler{log: log.With("handler", "LibraryHandler"), svc: svc}
}

// GET /api/games?q=&limit=&exclude_unsafe=
func (h *LibraryHandler) Search(c *gin.Context) {
	limit, err := intQuery(c, "limit", services.DefaultSearchLimit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	excludeUnsafe, err := boolQuery(c, "exclude_unsafe")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	games, err := h.svc.Search(c.Query("q"), limit, excludeUnsafe == nil || *excludeUnsafe)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondList(c, "games", games, len(games))
}

// GET /api/games/:id
func (h *LibraryHandler) GetGame(c *gin.Context) {
	id, err := gameIDParam(c)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	g, err := h.svc.Get(id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"game": g})
}

// GET /api/catalog/stats
func (h *LibraryHandler) Stats(c *gin.Context) {
	response.RespondOK(c, h.svc.Stats())
}
