package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/corepm/internal/constants"
)

func paramsFor(query string) PaginationParams {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/items?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PaginationParams
	}{
		{"defaults", "", PaginationParams{Skip: 0, Limit: constants.DefaultLimit}},
		{"explicit", "skip=20&limit=10", PaginationParams{Skip: 20, Limit: 10}},
		{"negative skip", "skip=-3", PaginationParams{Skip: 0, Limit: constants.DefaultLimit}},
		{"zero limit", "limit=0", PaginationParams{Skip: 0, Limit: constants.DefaultLimit}},
		{"limit capped", "limit=5000", PaginationParams{Skip: 0, Limit: constants.MaxLimit}},
		{"garbage", "skip=a&limit=b", PaginationParams{Skip: 0, Limit: constants.DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paramsFor(tt.query))
		})
	}
}
