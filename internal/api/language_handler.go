package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gsarma/runbox/internal/code"
)

// ListLanguages returns the supported language profiles without their
// default sources.
func (h *Handler) ListLanguages(c *gin.Context) {
	profiles := code.Profiles()
	out := make([]gin.H, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, gin.H{
			"id":            p.ID,
			"name":          p.Name,
			"extension":     p.Extension,
			"editor_syntax": p.EditorSyntax,
		})
	}
	c.JSON(http.StatusOK, gin.H{"languages": out, "default": code.Default().ID})
}

// GetLanguage returns one profile, default source included.
func (h *Handler) GetLanguage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid language id"})
		return
	}
	p, ok := code.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "language not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}
