package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 20, Offset: 0}},
		{"?page=3&limit=10", Params{Page: 3, Limit: 10, Offset: 20}},
		{"?page=-2&limit=abc", Params{Page: 1, Limit: 20, Offset: 0}},
		{"?page=2&limit=500", Params{Page: 2, Limit: MaxLimit, Offset: MaxLimit}},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)
		assert.Equal(t, tt.want, Parse(c), tt.query)
	}
}

func TestWrap(t *testing.T) {
	page := New(2, 10).Wrap([]string{"a"}, 21)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Equal(t, 2, page.Page)

	empty := New(1, 10).Wrap([]string{}, 0)
	assert.Equal(t, int64(0), empty.TotalPages)
}
