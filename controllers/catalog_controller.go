package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
)

// ListPrograms handles GET /api/v1/programs - the public course catalog
func ListPrograms(c *gin.Context) {
	db := config.GetDB()

	query := db.Where("active = ?", true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var programs []models.Program
	if err := query.Order("title ASC").Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list programs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    programs,
	})
}

// GetProgram handles GET /api/v1/programs/:slug - one program with its
// upcoming schedules
func GetProgram(c *gin.Context) {
	db := config.GetDB()

	var program models.Program
	if err := db.Where("slug = ?", c.Param("slug")).First(&program).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROGRAM_NOT_FOUND",
				"message": "Program not found",
			},
		})
		return
	}

	var schedules []models.Schedule
	if err := db.Where("program_id = ? AND active = ? AND start_date >= ?",
		program.ID, true, time.Now()).
		Order("start_date ASC").Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load schedules",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"program":   program,
			"schedules": schedules,
		},
	})
}

// ListSchedules handles GET /api/v1/schedules - the public course
// calendar with optional city/program/date filters
func ListSchedules(c *gin.Context) {
	db := config.GetDB()

	query := db.Preload("Program").Where("active = ?", true)
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if programID := c.Query("program_id"); programID != "" {
		query = query.Where("program_id = ?", programID)
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("start_date >= ?", t)
		}
	}

	var schedules []models.Schedule
	if err := query.Order("start_date ASC").Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list schedules",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    schedules,
	})
}
