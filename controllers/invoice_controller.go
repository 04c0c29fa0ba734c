package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
)

// ListInvoices handles GET /api/v1/invoices - back-office invoice list
func ListInvoices(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	db := config.GetDB()

	var total int64
	if err := db.Model(&models.Invoice{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to count invoices",
			},
		})
		return
	}

	var invoices []models.Invoice
	if err := db.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list invoices",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    invoices,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// CreateInvoiceRequestRequest represents the body for submitting
// alternate billing details
type CreateInvoiceRequestRequest struct {
	Email          string `json:"email" binding:"required,email"`
	CourseID       *uint  `json:"course_id"`
	BillingName    string `json:"billing_name"`
	BillingEmail   string `json:"billing_email" binding:"required,email"`
	BillingAddress string `json:"billing_address"`
	BillingCity    string `json:"billing_city"`
	BillingCountry string `json:"billing_country"`
}

// CreateInvoiceRequest handles POST /api/v1/invoice-requests - a customer
// asks for invoices to be issued to alternate billing details
func CreateInvoiceRequest(c *gin.Context) {
	var req CreateInvoiceRequestRequest
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

	request := models.InvoiceRequest{
		Email:          req.Email,
		CourseID:       req.CourseID,
		BillingName:    req.BillingName,
		BillingEmail:   req.BillingEmail,
		BillingAddress: req.BillingAddress,
		BillingCity:    req.BillingCity,
		BillingCountry: req.BillingCountry,
		Status:         models.RequestPending,
	}

	db := config.GetDB()
	if err := db.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create invoice request",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    request,
	})
}

// ListInvoiceRequests handles GET /api/v1/invoice-requests
func ListInvoiceRequests(c *gin.Context) {
	db := config.GetDB()

	query := db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []models.InvoiceRequest
	if err := query.Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list invoice requests",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// ReviewInvoiceRequestRequest represents the approve/reject body
type ReviewInvoiceRequestRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

// ReviewInvoiceRequest handles PATCH /api/v1/invoice-requests/:id -
// approves or rejects alternate billing details
func ReviewInvoiceRequest(c *gin.Context) {
	db := config.GetDB()

	var request models.InvoiceRequest
	if err := db.First(&request, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVOICE_REQUEST_NOT_FOUND",
				"message": "Invoice request not found",
			},
		})
		return
	}

	var req ReviewInvoiceRequestRequest
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

	if err := db.Model(&request).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update invoice request",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}
