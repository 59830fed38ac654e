package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/gamerec-backend/internal/platform/apierr"
)

func envelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestRespondAPIErrorClassified(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAPIError(c, apierr.BadRequest("invalid_k", errors.New("k must be between 1 and 50")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", rec.Code)
	}
	env := envelope(t, rec)
	if env.Error.Code != "invalid_k" || env.Error.Message != "k must be between 1 and 50" {
		t.Fatalf("envelope: got=%+v", env)
	}
}

func TestRespondAPIErrorHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	RespondAPIError(c, errors.New("sqlite: disk I/O error"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	env := envelope(t, rec)
	if env.Error.Code != "internal_error" || env.Error.Message != "internal server error" {
		t.Fatalf("envelope: got=%+v", env)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("cause not recorded on context")
	}
}
