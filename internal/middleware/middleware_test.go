package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestHostPatterns(t *testing.T) {
	got := hostPatterns([]string{"http://localhost:3000", "https://app.control.test", "*", "raw-host"})
	assert.Equal(t, []string{"localhost:3000", "app.control.test", "*", "raw-host"}, got)
}

func TestRawValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"12,5", "12,5"},
		{1000.0, "1000"},
		{2.5, "2.5"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rawValue(tt.in))
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"path":"/missing"`)
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"component":"http"`)
}

func TestLatestQuoteWithoutSource(t *testing.T) {
	SetRateSource(nil)
	_, err := latestQuote()
	assert.Error(t, err)
}
