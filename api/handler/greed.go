package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/koans/greed"
	"github.com/use-agent/koans/metrics"
	"github.com/use-agent/koans/models"
)

// Score returns a handler for POST /api/v1/greed/score.
func Score() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		result := greed.Breakdown(req.Dice)
		metrics.RecordScore(result.Total)

		c.JSON(http.StatusOK, models.ScoreResponse{
			Success:  true,
			Score:    result.Total,
			Steps:    result.Steps,
			Unscored: result.Unscored,
		})
	}
}

// Roll returns a handler for POST /api/v1/greed/roll.
func Roll() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}

		roll, err := greed.RollDice(greed.RollRequest{Count: req.Count, Seed: req.Seed})
		if err != nil {
			respondError(c, err)
			return
		}
		metrics.RecordScore(roll.Result.Total)

		c.JSON(http.StatusOK, models.RollResponse{
			Success: true,
			Dice:    roll.Dice,
			Score:   roll.Result.Total,
			Steps:   roll.Result.Steps,
		})
	}
}
