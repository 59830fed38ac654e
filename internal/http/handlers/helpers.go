package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/platform/apierr"
)

func gameIDParam(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest("invalid_game_id", fmt.Errorf("invalid game id %q", raw))
	}
	return id, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.BadRequest("invalid_"+name, fmt.Errorf("%s must be an integer", name))
	}
	return v, nil
}

// boolQuery returns nil when the parameter is absent.
func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierr.BadRequest("invalid_"+name, fmt.Errorf("%s must be a boolean", name))
	}
	return &v, nil
}

var errBadBody = errors.New("invalid request body")

func bindError(err error) error {
	return apierr.BadRequest("invalid_request", fmt.Errorf("%w: %v", errBadBody, err))
}
