package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultStatsDays = 7
	maxStatsDays     = 90
)

// Health reports liveness with the current queue and pair counts.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "hub": h.Hub.Stats()})
}

// Stats returns today's live counters and, when a database is configured,
// the persisted daily totals (newest first). ?days selects how many.
func (h *Handler) Stats(c *gin.Context) {
	resp := gin.H{"today": h.Usage.Today()}
	if h.Storage == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	days := defaultStatsDays
	if q := c.Query("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > maxStatsDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
			return
		}
		days = n
	}

	recent, err := h.Storage.RecentStats(c.Request.Context(), days)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load daily stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	resp["recent"] = recent
	c.JSON(http.StatusOK, resp)
}
