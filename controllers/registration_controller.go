package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/logger"
	"github.com/summitworks/training-api/models"
	"github.com/summitworks/training-api/utils"
	"github.com/summitworks/training-api/worker"
)

// FlexCount accepts a participant count sent as either a JSON number or
// a string. Unparseable values decode to zero and are clamped later.
type FlexCount int

// UnmarshalJSON implements lenient decoding for FlexCount.
func (f *FlexCount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Tolerate numeric strings like "2.0"
		fl, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			*f = 0
			return nil
		}
		n = int(fl)
	}
	*f = FlexCount(n)
	return nil
}

// CreateRegistrationRequest represents the request body for creating a registration
type CreateRegistrationRequest struct {
	Name          string     `json:"name" binding:"required"`
	Email         string     `json:"email" binding:"required,email"`
	Address       string     `json:"address" binding:"required"`
	City          string     `json:"city" binding:"required"`
	Country       string     `json:"country" binding:"required"`
	Mobile        string     `json:"mobile" binding:"required"`
	Phone         string     `json:"phone"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
	ScheduleID    *uint      `json:"schedule_id"`
	CourseID      *uint      `json:"course_id"`
	CourseTitle   string     `json:"course_title"`
	Participants  FlexCount  `json:"participants"`
	PaymentStatus string     `json:"payment_status"`
	OrderStatus   string     `json:"order_status"`
}

// registrationView is a registration enriched for API responses.
type registrationView struct {
	models.CourseRegistration
	SubmittedAtDisplay string `json:"submitted_at_display"`
	CourseDates        string `json:"course_dates,omitempty"`
}

func enrichRegistration(reg models.CourseRegistration) registrationView {
	view := registrationView{
		CourseRegistration: reg,
		SubmittedAtDisplay: utils.FormatDate(reg.SubmittedAt),
	}
	if reg.Schedule != nil {
		view.CourseDates = utils.FormatDateRange(reg.Schedule.StartDate, reg.Schedule.EndDate)
	}
	return view
}

// nextDisplayNo assigns the stored sequential registration number. Runs
// inside the creation transaction.
func nextDisplayNo(tx *gorm.DB) (uint, error) {
	var maxNo int64
	if err := tx.Model(&models.CourseRegistration{}).
		Select("COALESCE(MAX(display_no), 0)").Scan(&maxNo).Error; err != nil {
		return 0, err
	}
	return uint(maxNo) + 1, nil
}

// CreateRegistration handles POST /api/v1/registrations - creates a new
// course registration. Invoice and confirmation email are enqueued as an
// outbox task in the same transaction, so their failure can never fail
// the registration itself.
func CreateRegistration(c *gin.Context) {
	var req CreateRegistrationRequest
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

	if !models.ValidPaymentMethod(req.PaymentMethod) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid payment method",
			},
		})
		return
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentUnpaid
	} else if !models.ValidPaymentStatus(paymentStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid payment status",
			},
		})
		return
	}

	orderStatus := req.OrderStatus
	if orderStatus == "" {
		orderStatus = models.OrderIncomplete
	} else if !models.ValidOrderStatus(orderStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid order status",
			},
		})
		return
	}

	participants := int(req.Participants)
	if participants < 1 {
		participants = 1
	}

	db := config.GetDB()
	cfg := config.GetConfig()

	courseID := req.CourseID
	courseTitle := req.CourseTitle
	var total float64

	if req.ScheduleID != nil {
		var schedule models.Schedule
		if err := db.Preload("Program").First(&schedule, *req.ScheduleID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SCHEDULE_NOT_FOUND",
					"message": "Schedule not found",
				},
			})
			return
		}
		total = schedule.Fee * float64(participants)
		if courseTitle == "" {
			courseTitle = schedule.Program.Title
		}
		if courseID == nil {
			courseID = &schedule.ProgramID
		}
	}

	reg := models.CourseRegistration{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
		Mobile:  req.Mobile,
		Phone:   req.Phone,
		// Dial codes are fixed defaults regardless of input
		MobileDialCode: cfg.DefaultDialCode,
		PhoneDialCode:  cfg.DefaultDialCode,
		ScheduleID:     req.ScheduleID,
		CourseID:       courseID,
		CourseTitle:    courseTitle,
		Participants:   participants,
		Total:          total,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  paymentStatus,
		OrderStatus:    orderStatus,
		SubmittedAt:    time.Now(),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		displayNo, err := nextDisplayNo(tx)
		if err != nil {
			return err
		}
		reg.DisplayNo = displayNo

		if err := tx.Create(&reg).Error; err != nil {
			return err
		}
		return worker.Enqueue(tx, models.TaskRegistrationConfirmation, reg.ID)
	})
	if err != nil {
		logger.Error("failed to create registration", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create registration",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    enrichRegistration(reg),
	})
}

// GetRegistration handles GET /api/v1/registrations/:id
func GetRegistration(c *gin.Context) {
	db := config.GetDB()

	var reg models.CourseRegistration
	if err := db.Preload("Schedule").Preload("Schedule.Program").
		First(&reg, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REGISTRATION_NOT_FOUND",
				"message": "Registration not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    enrichRegistration(reg),
	})
}

// ListRegistrations handles GET /api/v1/registrations?page=&limit=
func ListRegistrations(c *gin.Context) {
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
	if err := db.Model(&models.CourseRegistration{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to count registrations",
			},
		})
		return
	}

	var regs []models.CourseRegistration
	if err := db.Preload("Schedule").Preload("Schedule.Program").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&regs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list registrations",
			},
		})
		return
	}

	views := make([]registrationView, 0, len(regs))
	for _, reg := range regs {
		views = append(views, enrichRegistration(reg))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// UpdateRegistrationRequest represents a sparse partial update. Only
// fields present in the payload are touched.
type UpdateRegistrationRequest struct {
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	Address       *string    `json:"address"`
	City          *string    `json:"city"`
	Country       *string    `json:"country"`
	Mobile        *string    `json:"mobile"`
	Phone         *string    `json:"phone"`
	CourseTitle   *string    `json:"course_title"`
	Participants  *FlexCount `json:"participants"`
	PaymentMethod *string    `json:"payment_method"`
	PaymentStatus *string    `json:"payment_status"`
	Status        *string    `json:"status"`
}

// UpdateRegistration handles PATCH /api/v1/registrations/:id. The field
// update is the only operation whose failure fails the request; invoice
// generation rides on an outbox task written in the same transaction.
func UpdateRegistration(c *gin.Context) {
	db := config.GetDB()

	var reg models.CourseRegistration
	if err := db.First(&reg, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REGISTRATION_NOT_FOUND",
				"message": "Registration not found",
			},
		})
		return
	}

	var req UpdateRegistrationRequest
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

	if req.PaymentStatus != nil && !models.ValidPaymentStatus(*req.PaymentStatus) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid payment status",
			},
		})
		return
	}
	if req.Status != nil && !models.ValidOrderStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid order status",
			},
		})
		return
	}
	if req.PaymentMethod != nil && !models.ValidPaymentMethod(*req.PaymentMethod) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid payment method",
			},
		})
		return
	}

	// Transition detection against the currently persisted values,
	// before anything is written.
	paidTransition := req.PaymentStatus != nil &&
		reg.PaymentStatus != models.PaymentPaid &&
		*req.PaymentStatus == models.PaymentPaid
	completedTransition := req.Status != nil &&
		reg.OrderStatus != models.OrderCompleted &&
		*req.Status == models.OrderCompleted

	effectivePayment := reg.PaymentStatus
	if req.PaymentStatus != nil {
		effectivePayment = *req.PaymentStatus
	}

	enqueueInvoice := paidTransition
	if completedTransition {
		if strings.EqualFold(effectivePayment, models.PaymentPaid) {
			enqueueInvoice = true
		} else {
			logger.Info("skipping invoice generation, payment not settled",
				"registration_id", reg.ID, "payment_status", effectivePayment)
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Mobile != nil {
		updates["mobile"] = *req.Mobile
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.CourseTitle != nil {
		updates["course_title"] = *req.CourseTitle
	}
	if req.Participants != nil {
		participants := int(*req.Participants)
		if participants < 1 {
			participants = 1
		}
		updates["participants"] = participants
	}
	if req.PaymentMethod != nil {
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.PaymentStatus != nil {
		updates["payment_status"] = *req.PaymentStatus
	}
	if req.Status != nil {
		updates["order_status"] = *req.Status
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&reg).Updates(updates).Error; err != nil {
				return err
			}
		}
		if enqueueInvoice {
			return worker.Enqueue(tx, models.TaskInvoiceGeneration, reg.ID)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to update registration", "registration_id", reg.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update registration",
			},
		})
		return
	}

	if err := db.Preload("Schedule").Preload("Schedule.Program").
		First(&reg, reg.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load registration",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    enrichRegistration(reg),
	})
}

// DeleteRegistration handles DELETE /api/v1/registrations/:id - a soft
// cancel. The record is kept; only the order status changes.
func DeleteRegistration(c *gin.Context) {
	db := config.GetDB()

	var reg models.CourseRegistration
	if err := db.First(&reg, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "REGISTRATION_NOT_FOUND",
				"message": "Registration not found",
			},
		})
		return
	}

	if err := db.Model(&reg).Update("order_status", models.OrderCancelled).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to cancel registration",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Registration cancelled",
	})
}
