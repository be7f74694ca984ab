package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	maxBodySize     = 1 << 20 // 1MB
	livenessMessage = "Kanban API is running!"
)

type validationDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": livenessMessage})
}

func (s *Server) handleList(c *gin.Context) {
	tasks, err := s.store.List(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreate(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	req, invalid := ParseCreateRequest(body)
	if invalid != nil {
		s.validationError(c, invalid)
		return
	}

	task, err := s.store.Create(c.Request.Context(), req.NewTask())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	req, invalid := ParseStatusRequest(body)
	if invalid != nil {
		s.validationError(c, invalid)
		return
	}

	found, err := s.store.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleDelete(c *gin.Context) {
	found, err := s.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// readBody reads at most maxBodySize bytes. It writes the error response
// itself and reports false when the body could not be read.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "request body exceeds maximum size of 1MB",
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "could not read request body",
		})
		return nil, false
	}
	return body, true
}

func (s *Server) validationError(c *gin.Context, res *ValidationResult) {
	details := make([]validationDetail, 0, len(res.Errors))
	for _, e := range res.Errors {
		details = append(details, validationDetail{Path: e.Path, Message: e.Err.Error()})
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"error":   "validation failed",
		"details": details,
	})
}

// internalError logs err and answers with a generic 500.
func (s *Server) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "internal server error",
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   "task not found",
	})
}
