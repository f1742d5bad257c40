package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutExpiresSlowHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	release := make(chan struct{})
	finished := make(chan struct{})

	r := gin.New()
	r.Use(RequestID(), Timeout(TimeoutConfig{Duration: 20 * time.Millisecond}))
	r.GET("/slow", func(c *gin.Context) {
		<-release
		c.JSON(http.StatusOK, gin.H{"status": "late"})
		close(finished)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "request timeout")

	// Let the handler finish; its late write must be discarded.
	close(release)
	<-finished
	assert.NotContains(t, w.Body.String(), "late")
}

func TestTimeoutPassesFastHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(), Timeout(TimeoutConfig{Duration: time.Second}))
	r.GET("/fast", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
