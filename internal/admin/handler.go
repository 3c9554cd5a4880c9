package admin

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"yamdb/internal/dataset"
	"yamdb/internal/metrics"
)

// Runner runs one full load-data pass.
type Runner interface {
	Run(ctx context.Context) *dataset.Result
}

// Counter reports row counts per store table.
type Counter interface {
	Counts(ctx context.Context, tables []string) (map[string]int64, error)
}

type Handler struct {
	Runner  Runner
	Counter Counter

	// one run at a time; the load stage clears the whole store
	running sync.Mutex
}

func NewHandler(runner Runner, counter Counter) *Handler {
	return &Handler{Runner: runner, Counter: counter}
}

// RegisterRoutes mounts the admin endpoints; rg must already require an admin.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/load-data", h.loadData)
	rg.GET("/stats", h.stats)
}

func (h *Handler) loadData(c *gin.Context) {
	if !h.running.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "load-data already running"})
		return
	}
	defer h.running.Unlock()

	// a dropped client must not stop a run halfway through the reload
	res := h.Runner.Run(context.WithoutCancel(c.Request.Context()))
	metrics.ObserveRun(res)

	if f := res.Failure(); f != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  f.Err.Error(),
			"stage":  f.Stage,
			"entity": f.Entity,
			"result": res,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) stats(c *gin.Context) {
	tables := make([]string, 0, len(dataset.Entities))
	for _, e := range dataset.Entities {
		tables = append(tables, e.Table)
	}
	counts, err := h.Counter.Counts(c.Request.Context(), tables)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": counts})
}
