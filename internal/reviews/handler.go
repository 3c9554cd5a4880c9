package reviews

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yamdb/internal/catalog"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/titles/:id/reviews", h.listByTitle)
	rg.GET("/titles/:id/reviews/:review_id/comments", h.listComments)
}

func (h *Handler) listByTitle(c *gin.Context) {
	titleID, ok := catalog.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title id"})
		return
	}

	limit, offset := catalog.ClampPage(catalog.ParseInt(c.Query("limit"), 20), catalog.ParseInt(c.Query("offset"), 0))

	items, err := h.Repo.ListByTitle(c.Request.Context(), titleID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) listComments(c *gin.Context) {
	titleID, ok := catalog.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title id"})
		return
	}
	reviewID, ok := catalog.ParseID(c.Param("review_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	limit, offset := catalog.ClampPage(catalog.ParseInt(c.Query("limit"), 20), catalog.ParseInt(c.Query("offset"), 0))

	items, err := h.Repo.ListComments(c.Request.Context(), titleID, reviewID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}
