package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notewall/notewall/internal/enhance"
	"github.com/notewall/notewall/internal/notes"
	"github.com/notewall/notewall/internal/notes/service"
	"github.com/notewall/notewall/internal/realtime"
	"github.com/notewall/notewall/pkg/middleware"
)

// Enhancer is the piece of the enhancement client the handler needs.
type Enhancer interface {
	Enhance(ctx context.Context, text string) (string, error)
}

// RegisterNoteRoutes mounts the note CRUD, reorganize and enhance
// endpoints on rg. Mutations are announced through hub; create passes the
// caller's clientId along so the originating session is not echoed.
func RegisterNoteRoutes(rg *gin.RouterGroup, svc service.Service, hub *realtime.Hub, enhancer Enhancer) {
	rg.GET("/notes", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notes"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	rg.POST("/notes", func(c *gin.Context) {
		var req struct {
			Title    string   `json:"title"`
			Content  string   `json:"content"`
			X        *float64 `json:"x,omitempty"`
			Y        *float64 `json:"y,omitempty"`
			ClientID string   `json:"clientId,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		n, err := svc.Create(c.Request.Context(), service.CreateInput{
			Title:   req.Title,
			Content: req.Content,
			OwnerID: middleware.SubjectFromContext(c),
			X:       req.X,
			Y:       req.Y,
		})
		if err != nil {
			if errors.Is(err, service.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create note"})
			return
		}
		hub.AnnounceCreated(n, req.ClientID)
		c.JSON(http.StatusCreated, n)
	})

	rg.GET("/notes/:id", func(c *gin.Context) {
		n, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load note"})
			return
		}
		c.JSON(http.StatusOK, n)
	})

	rg.PUT("/notes/:id", func(c *gin.Context) {
		var req struct {
			Title   *string  `json:"title,omitempty"`
			Content *string  `json:"content,omitempty"`
			X       *float64 `json:"x,omitempty"`
			Y       *float64 `json:"y,omitempty"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		patch := notes.Patch{Title: req.Title, Content: req.Content, X: req.X, Y: req.Y}
		n, err := svc.Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update note"})
			return
		}
		hub.AnnounceUpdated(n)
		c.JSON(http.StatusOK, n)
	})

	rg.DELETE("/notes/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete note"})
			return
		}
		hub.AnnounceDeleted(id)
		c.Status(http.StatusNoContent)
	})

	rg.POST("/notes/reorganize", func(c *gin.Context) {
		moved, err := svc.Reorganize(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorganize board"})
			return
		}
		for _, n := range moved {
			hub.AnnounceUpdated(n)
		}
		c.JSON(http.StatusOK, moved)
	})

	rg.POST("/notes/enhance", func(c *gin.Context) {
		var req struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		enhanced, err := enhancer.Enhance(c.Request.Context(), req.Content)
		if err != nil {
			if errors.Is(err, enhance.ErrValidation) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "enhancement service unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"enhancedContent": enhanced})
	})
}
