package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
)

// ListOutboxTasks handles GET /api/v1/outbox - lets the back office see
// pending and permanently failed invoice/email tasks instead of having
// failures vanish into server logs
func ListOutboxTasks(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.OutboxTask
	if err := query.Limit(200).Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list outbox tasks",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
	})
}

// RetryOutboxTask handles POST /api/v1/outbox/:id/retry - requeues a
// permanently failed task
func RetryOutboxTask(c *gin.Context) {
	db := config.GetDB()

	var task models.OutboxTask
	if err := db.First(&task, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TASK_NOT_FOUND",
				"message": "Outbox task not found",
			},
		})
		return
	}

	if task.Status != models.TaskFailed {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TASK_NOT_RETRYABLE",
				"message": "Only failed tasks can be retried",
			},
		})
		return
	}

	if err := db.Model(&task).Updates(map[string]interface{}{
		"status":          models.TaskPending,
		"attempts":        0,
		"next_attempt_at": time.Now(),
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to requeue task",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}
