package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
)

// CreateEnquiryRequest represents the request body for submitting an enquiry
type CreateEnquiryRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	CourseTitle string `json:"course_title"`
	Message     string `json:"message" binding:"required"`
}

// CreateEnquiry handles POST /api/v1/enquiries - public contact form
func CreateEnquiry(c *gin.Context) {
	var req CreateEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	enquiry := models.Enquiry{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CourseTitle: req.CourseTitle,
		Message:     req.Message,
		Status:      "new",
	}

	db := config.GetDB()
	if err := db.Create(&enquiry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create enquiry",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    enquiry,
	})
}

// ListEnquiries handles GET /api/v1/enquiries - back-office enquiry list
func ListEnquiries(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var enquiries []models.Enquiry
	if err := query.Find(&enquiries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list enquiries",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    enquiries,
	})
}

// UpdateEnquiryRequest represents the request body for updating an enquiry
type UpdateEnquiryRequest struct {
	Status string `json:"status" binding:"required,oneof=new in_progress closed"`
}

// UpdateEnquiry handles PATCH /api/v1/enquiries/:id - status changes only
func UpdateEnquiry(c *gin.Context) {
	db := config.GetDB()

	var enquiry models.Enquiry
	if err := db.First(&enquiry, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ENQUIRY_NOT_FOUND",
				"message": "Enquiry not found",
			},
		})
		return
	}

	var req UpdateEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := db.Model(&enquiry).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update enquiry",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    enquiry,
	})
}
