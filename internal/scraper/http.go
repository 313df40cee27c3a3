package scraper

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ecosphere-community/eco-backend/internal/api/http/middleware"
)

// Scrape runs take tens of seconds, so identical queries are served
// from redis for a while before spawning another interpreter.
const cacheTTL = 10 * time.Minute

type Handler struct {
	client  *Client
	limiter *rate.Limiter
	cache   *redis.Client
	log     zerolog.Logger
}

// NewHandler wraps the client with a process-wide rate limit; every
// search shells out to a Python interpreter, so uncapped traffic would
// fork-bomb the host. cache may be nil.
func NewHandler(client *Client, perMinute int, cache *redis.Client, log zerolog.Logger) *Handler {
	if perMinute <= 0 {
		perMinute = 6
	}
	return &Handler{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		cache:   cache,
		log:     log,
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/scrape-gofundme", h.search)
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter"})
		return
	}

	cacheKey := "eco:scrape:" + query
	if h.cache != nil {
		if raw, err := h.cache.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var campaigns []Campaign
			if json.Unmarshal([]byte(raw), &campaigns) == nil {
				c.JSON(http.StatusOK, campaigns)
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			h.log.Warn().Err(err).Msg("scrape cache read")
		}
	}

	if !h.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many scrape requests, try again shortly"})
		return
	}

	campaigns, err := h.client.Search(c.Request.Context(), query)
	if err != nil {
		rid := middleware.GetRequestID(c.Request.Context())
		switch {
		case errors.Is(err, ErrParse):
			h.log.Error().Err(err).Str("query", query).Str("request_id", rid).Msg("scraper parse")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error parsing JSON from scraper script.", "details": err.Error()})
		case errors.Is(err, ErrUnavailable):
			h.log.Error().Err(err).Str("query", query).Str("request_id", rid).Msg("scraper unavailable")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Scraper unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if h.cache != nil {
		if raw, err := json.Marshal(campaigns); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, raw, cacheTTL).Err(); err != nil {
				h.log.Warn().Err(err).Msg("scrape cache write")
			}
		}
	}
	c.JSON(http.StatusOK, campaigns)
}
