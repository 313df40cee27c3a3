package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchRouter(t *testing.T, runs *int, withCache bool) *gin.Engine {
	c := NewClient("python", "gofundme_scraper.py", time.Second, zerolog.Nop())
	c.run = func(context.Context, string) ([]byte, error) {
		*runs++
		return []byte(`[{"Name": "Save the Reef", "Query": "reef"}]`), nil
	}

	var cache *redis.Client
	if withCache {
		mr := miniredis.RunT(t)
		cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(c, 6, cache, zerolog.Nop()).Register(r)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("missing query is rejected", func(t *testing.T) {
		var runs int
		r := newSearchRouter(t, &runs, false)
		w := get(r, "/scrape-gofundme")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, runs)
	})

	t.Run("returns scraped campaigns", func(t *testing.T) {
		var runs int
		r := newSearchRouter(t, &runs, false)
		w := get(r, "/scrape-gofundme?query=reef")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Save the Reef")
		assert.Equal(t, 1, runs)
	})

	t.Run("repeat query is served from cache", func(t *testing.T) {
		var runs int
		r := newSearchRouter(t, &runs, true)

		w := get(r, "/scrape-gofundme?query=reef")
		require.Equal(t, http.StatusOK, w.Code)
		w = get(r, "/scrape-gofundme?query=reef")
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, 1, runs)
	})

	t.Run("burst beyond the limit is throttled", func(t *testing.T) {
		var runs int
		r := newSearchRouter(t, &runs, false)

		var throttled bool
		for i := 0; i < 10; i++ {
			if get(r, "/scrape-gofundme?query=reef").Code == http.StatusTooManyRequests {
				throttled = true
			}
		}
		assert.True(t, throttled)
	})
}
