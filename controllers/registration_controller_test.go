package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
)

func setupRegistrationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Program{},
		&models.Schedule{},
		&models.CourseRegistration{},
		&models.Invoice{},
		&models.InvoiceRequest{},
		&models.Enquiry{},
		&models.OutboxTask{},
		&models.User{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	config.SetConfig(&config.Config{
		DatabaseURL:     "sqlite::memory:",
		GoEnv:           "test",
		DefaultDialCode: "+44",
		CompanyName:     "Test Training Co",
		SupportEmail:    "support@test.example",
		InvoiceDir:      t.TempDir(),
	})
	return db
}

func newRegistrationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/registrations", CreateRegistration)
	router.GET("/api/v1/registrations", ListRegistrations)
	router.GET("/api/v1/registrations/:id", GetRegistration)
	router.PATCH("/api/v1/registrations/:id", UpdateRegistration)
	router.DELETE("/api/v1/registrations/:id", DeleteRegistration)
	return router
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func seedSchedule(t *testing.T, db *gorm.DB, fee float64) models.Schedule {
	t.Helper()

	program := models.Program{Title: "Advanced Negotiation", Slug: "advanced-negotiation", Active: true}
	require.NoError(t, db.Create(&program).Error)

	schedule := models.Schedule{
		ProgramID: program.ID,
		Venue:     "Harbour Centre",
		City:      "Manchester",
		StartDate: time.Now().AddDate(0, 1, 0),
		EndDate:   time.Now().AddDate(0, 1, 2),
		Fee:       fee,
		Seats:     20,
		Active:    true,
	}
	require.NoError(t, db.Create(&schedule).Error)
	schedule.Program = program
	return schedule
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"name":           "Ada Price",
		"email":          "ada@example.com",
		"address":        "1 High Street",
		"city":           "Leeds",
		"country":        "UK",
		"mobile":         "07700900123",
		"payment_method": "credit",
	}
}

func TestCreateRegistration(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(body map[string]interface{})
		expectedStatus int
		expectedError  string
		check          func(t *testing.T, db *gorm.DB, data map[string]interface{})
	}{
		{
			name:           "Successfully create registration",
			mutate:         func(body map[string]interface{}) {},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, db *gorm.DB, data map[string]interface{}) {
				assert.Equal(t, "Ada Price", data["name"])
				assert.Equal(t, float64(1), data["participants"])
				assert.Equal(t, "Unpaid", data["payment_status"])
				assert.Equal(t, "Incomplete", data["order_status"])
				// Dial codes are forced to the configured default
				assert.Equal(t, "+44", data["mobile_dial_code"])
				assert.Equal(t, "+44", data["phone_dial_code"])

				// Confirmation task enqueued transactionally
				var count int64
				db.Model(&models.OutboxTask{}).
					Where("kind = ?", models.TaskRegistrationConfirmation).Count(&count)
				assert.Equal(t, int64(1), count)
			},
		},
		{
			name: "Participants as numeric string",
			mutate: func(body map[string]interface{}) {
				body["participants"] = "3"
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, db *gorm.DB, data map[string]interface{}) {
				assert.Equal(t, float64(3), data["participants"])
			},
		},
		{
			name: "Non-numeric participants clamps to one",
			mutate: func(body map[string]interface{}) {
				body["participants"] = "lots"
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, db *gorm.DB, data map[string]interface{}) {
				assert.Equal(t, float64(1), data["participants"])
			},
		},
		{
			name: "Negative participants clamps to one",
			mutate: func(body map[string]interface{}) {
				body["participants"] = -4
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, db *gorm.DB, data map[string]interface{}) {
				assert.Equal(t, float64(1), data["participants"])
			},
		},
		{
			name: "Invalid payment method",
			mutate: func(body map[string]interface{}) {
				body["payment_method"] = "bitcoin"
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Invalid payment status",
			mutate: func(body map[string]interface{}) {
				body["payment_status"] = "Settled"
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupRegistrationTestDB(t)
			router := newRegistrationRouter()

			body := validCreateBody()
			tt.mutate(body)

			w, response := performJSON(t, router, "POST", "/api/v1/registrations", body)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				errData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errData["code"])

				// Nothing may be persisted on a validation failure
				var count int64
				db.Model(&models.CourseRegistration{}).Count(&count)
				assert.Equal(t, int64(0), count)
				return
			}

			assert.True(t, response["success"].(bool))
			if tt.check != nil {
				tt.check(t, db, response["data"].(map[string]interface{}))
			}
		})
	}
}

func TestCreateRegistrationMissingRequiredFields(t *testing.T) {
	required := []string{"name", "email", "address", "city", "country", "mobile", "payment_method"}

	for _, field := range required {
		t.Run("missing "+field, func(t *testing.T) {
			db := setupRegistrationTestDB(t)
			router := newRegistrationRouter()

			body := validCreateBody()
			delete(body, field)

			w, response := performJSON(t, router, "POST", "/api/v1/registrations", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			errData := response["error"].(map[string]interface{})
			assert.Equal(t, "VALIDATION_ERROR", errData["code"])

			var count int64
			db.Model(&models.CourseRegistration{}).Count(&count)
			assert.Equal(t, int64(0), count)
		})
	}
}

func TestCreateRegistrationDerivesFromSchedule(t *testing.T) {
	db := setupRegistrationTestDB(t)
	router := newRegistrationRouter()
	schedule := seedSchedule(t, db, 1000)

	body := validCreateBody()
	body["schedule_id"] = schedule.ID

	w, response := performJSON(t, router, "POST", "/api/v1/registrations", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["participants"])
	assert.Equal(t, float64(1000), data["total"])
	assert.Equal(t, "Advanced Negotiation", data["course_title"])
	assert.Equal(t, float64(schedule.ProgramID), data["course_id"])

	// With explicit participants the total scales
	body = validCreateBody()
	body["email"] = "second@example.com"
	body["schedule_id"] = schedule.ID
	body["participants"] = 3

	_, response = performJSON(t, router, "POST", "/api/v1/registrations", body)
	data = response["data"].(map[string]interface{})
	assert.Equal(t, float64(3000), data["total"])
}

func TestDisplayNumberSequence(t *testing.T) {
	db := setupRegistrationTestDB(t)
	router := newRegistrationRouter()

	for i := 0; i < 3; i++ {
		body := validCreateBody()
		w, _ := performJSON(t, router, "POST", "/api/v1/registrations", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var regs []models.CourseRegistration
	require.NoError(t, db.Order("created_at DESC").Find(&regs).Error)
	require.Len(t, regs, 3)

	var total int64
	db.Model(&models.CourseRegistration{}).Count(&total)

	// The most recent registration carries the highest display number,
	// equal to the total count
	assert.Equal(t, uint(total), regs[0].DisplayNo)
	assert.Equal(t, uint(1), regs[len(regs)-1].DisplayNo)
}

func TestGetRegistration(t *testing.T) {
	db := setupRegistrationTestDB(t)
	router := newRegistrationRouter()
	schedule := seedSchedule(t, db, 500)

	body := validCreateBody()
	body["schedule_id"] = schedule.ID
	w, response := performJSON(t, router, "POST", "/api/v1/registrations", body)
	require.Equal(t, http.StatusCreated, w.Code)
	created := response["data"].(map[string]interface{})
	id := int(created["id"].(float64))

	w, response = performJSON(t, router, "GET", "/api/v1/registrations/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(id), data["id"])
	assert.NotEmpty(t, data["submitted_at_display"])
	assert.NotEmpty(t, data["course_dates"])

	schedData := data["schedule"].(map[string]interface{})
	progData := schedData["program"].(map[string]interface{})
	assert.Equal(t, "Advanced Negotiation", progData["title"])

	w, _ = performJSON(t, router, "GET", "/api/v1/registrations/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRegistrationsPagination(t *testing.T) {
	setupRegistrationTestDB(t)
	router := newRegistrationRouter()

	for i := 0; i < 5; i++ {
		body := validCreateBody()
		w, _ := performJSON(t, router, "POST", "/api/v1/registrations", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, response := performJSON(t, router, "GET", "/api/v1/registrations?page=1&limit=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	data := response["data"].([]interface{})
	assert.Len(t, data, 2)

	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(5), meta["total"])
	assert.Equal(t, float64(1), meta["page"])
	assert.Equal(t, float64(2), meta["limit"])
}

func TestUpdateRegistrationValidation(t *testing.T) {
	db := setupRegistrationTestDB(t)
	router := newRegistrationRouter()

	reg := models.CourseRegistration{
		DisplayNo: 1, Name: "Ada Price", Email: "ada@example.com",
		Address: "1 High Street", City: "Leeds", Country: "UK",
		Mobile: "07700900123", Participants: 1,
		PaymentMethod: "credit", PaymentStatus: models.PaymentUnpaid,
		OrderStatus: models.OrderIncomplete, SubmittedAt: time.Now(),
	}
	require.NoError(t, db.Create(&reg).Error)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
	}{
		{
			name:           "Invalid payment status",
			body:           map[string]interface{}{"payment_status": "Pending"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid order status",
			body:           map[string]interface{}{"status": "Done"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid payment method",
			body:           map[string]interface{}{"payment_method": "barter"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Valid partial update",
			body:           map[string]interface{}{"city": "York"},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := performJSON(t, router, "PATCH", "/api/v1/registrations/1", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	// The invalid updates must not have mutated anything
	var current models.CourseRegistration
	require.NoError(t, db.First(&current, reg.ID).Error)
	assert.Equal(t, models.PaymentUnpaid, current.PaymentStatus)
	assert.Equal(t, models.OrderIncomplete, current.OrderStatus)
	assert.Equal(t, "York", current.City)
}

func countInvoiceTasks(db *gorm.DB) int64 {
	var count int64
	db.Model(&models.OutboxTask{}).
		Where("kind = ?", models.TaskInvoiceGeneration).Count(&count)
	return count
}

func TestUpdateRegistrationInvoiceTriggers(t *testing.T) {
	seed := func(t *testing.T, db *gorm.DB, paymentStatus, orderStatus string) models.CourseRegistration {
		reg := models.CourseRegistration{
			DisplayNo: 1, Name: "Ada Price", Email: "ada@example.com",
			Address: "1 High Street", City: "Leeds", Country: "UK",
			Mobile: "07700900123", Participants: 1,
			PaymentMethod: "invoice", PaymentStatus: paymentStatus,
			OrderStatus: orderStatus, SubmittedAt: time.Now(),
		}
		if err := db.Create(&reg).Error; err != nil {
			t.Fatalf("Failed to seed registration: %v", err)
		}
		return reg
	}

	t.Run("Unpaid to Paid enqueues exactly one invoice task", func(t *testing.T) {
		db := setupRegistrationTestDB(t)
		router := newRegistrationRouter()
		seed(t, db, models.PaymentUnpaid, models.OrderIncomplete)

		w, _ := performJSON(t, router, "PATCH", "/api/v1/registrations/1",
			map[string]interface{}{"payment_status": "Paid"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), countInvoiceTasks(db))

		// An identical resubmission detects no transition
		w, _ = performJSON(t, router, "PATCH", "/api/v1/registrations/1",
			map[string]interface{}{"payment_status": "Paid"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), countInvoiceTasks(db))
	})

	t.Run("Completed while Unpaid does not enqueue", func(t *testing.T) {
		db := setupRegistrationTestDB(t)
		router := newRegistrationRouter()
		seed(t, db, models.PaymentUnpaid, models.OrderIncomplete)

		w, _ := performJSON(t, router, "PATCH", "/api/v1/registrations/1",
			map[string]interface{}{"status": "Completed"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), countInvoiceTasks(db))

		var current models.CourseRegistration
		db.First(&current, 1)
		assert.Equal(t, models.OrderCompleted, current.OrderStatus)
	})

	t.Run("Paid and Completed in one request enqueues once", func(t *testing.T) {
		db := setupRegistrationTestDB(t)
		router := newRegistrationRouter()
		seed(t, db, models.PaymentUnpaid, models.OrderIncomplete)

		w, _ := performJSON(t, router, "PATCH", "/api/v1/registrations/1",
			map[string]interface{}{"payment_status": "Paid", "status": "Completed"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), countInvoiceTasks(db))
	})

	t.Run("Completed when already Paid enqueues", func(t *testing.T) {
		db := setupRegistrationTestDB(t)
		router := newRegistrationRouter()
		seed(t, db, models.PaymentPaid, models.OrderIncomplete)

		w, _ := performJSON(t, router, "PATCH", "/api/v1/registrations/1",
			map[string]interface{}{"status": "Completed"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), countInvoiceTasks(db))
	})
}

func TestDeleteRegistrationSoftCancels(t *testing.T) {
	db := setupRegistrationTestDB(t)
	router := newRegistrationRouter()

	reg := models.CourseRegistration{
		DisplayNo: 1, Name: "Ada Price", Email: "ada@example.com",
		Address: "1 High Street", City: "Leeds", Country: "UK",
		Mobile: "07700900123", Participants: 1,
		PaymentMethod: "credit", PaymentStatus: models.PaymentUnpaid,
		OrderStatus: models.OrderIncomplete, SubmittedAt: time.Now(),
	}
	require.NoError(t, db.Create(&reg).Error)

	w, response := performJSON(t, router, "DELETE", "/api/v1/registrations/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, response["success"].(bool))

	var current models.CourseRegistration
	require.NoError(t, db.First(&current, reg.ID).Error)
	assert.Equal(t, models.OrderCancelled, current.OrderStatus)

	w, _ = performJSON(t, router, "DELETE", "/api/v1/registrations/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
