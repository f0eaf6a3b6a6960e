package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/koans/models"
	"github.com/use-agent/koans/triangle"
)

// Triangle returns a handler for POST /api/v1/triangle.
func Triangle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TriangleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		kind, err := triangle.Classify(req.A, req.B, req.C)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.TriangleResponse{Success: true, Kind: kind})
	}
}
