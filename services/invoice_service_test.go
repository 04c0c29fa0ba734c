package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
	"github.com/summitworks/training-api/utils"
)

func setupInvoiceTest(t *testing.T) (*gorm.DB, *MockEmailSender) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.Invoice{}, &models.InvoiceRequest{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	config.SetConfig(&config.Config{
		DatabaseURL:  "sqlite::memory:",
		GoEnv:        "test",
		CompanyName:  "Test Training Co",
		SupportEmail: "support@test.example",
		InvoiceDir:   t.TempDir(),
	})

	SetStorageService(nil)
	mockEmail := NewMockEmailSender()
	mockEmail.SetAsMockForTesting()

	return db, mockEmail
}

func invoiceParamsFixture() InvoiceParams {
	courseID := uint(7)
	scheduleID := uint(12)
	return InvoiceParams{
		CourseID:             &courseID,
		ScheduleID:           &scheduleID,
		CourseRegistrationID: 42,
		Amount:               1500,
		Email:                "billing@client.example",
		Name:                 "Client Ltd",
		CourseTitle:          "Strategic Finance",
		Address:              "40 Broad Quay",
		City:                 "Bristol",
		Country:              "UK",
		Participants:         2,
		PaymentStatus:        models.PaymentPaid,
	}
}

func TestCreateInvoice(t *testing.T) {
	db, mockEmail := setupInvoiceTest(t)
	svc := &InvoiceService{}

	result, err := svc.CreateInvoice(invoiceParamsFixture())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.InvoiceNo)
	assert.True(t, utils.FileExists(result.PDFPath), "PDF artifact should exist on disk")

	var inv models.Invoice
	require.NoError(t, db.First(&inv).Error)
	assert.Equal(t, uint(42), inv.CourseRegistrationID)
	assert.Equal(t, float64(1500), inv.Amount)
	assert.Equal(t, "Client Ltd", inv.Name)
	assert.NotNil(t, inv.EmailedAt)

	messages := mockEmail.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "billing@client.example", messages[0].To)
	assert.Contains(t, messages[0].Subject, result.InvoiceNo)
	require.Len(t, messages[0].Attachments, 1)
}

func TestCreateInvoiceSkipEmail(t *testing.T) {
	db, mockEmail := setupInvoiceTest(t)
	svc := &InvoiceService{}

	params := invoiceParamsFixture()
	params.SkipEmail = true

	_, err := svc.CreateInvoice(params)
	require.NoError(t, err)

	assert.Empty(t, mockEmail.Messages())

	var inv models.Invoice
	require.NoError(t, db.First(&inv).Error)
	assert.Nil(t, inv.EmailedAt)
}

func TestCreateInvoiceDuplicate(t *testing.T) {
	db, _ := setupInvoiceTest(t)
	svc := &InvoiceService{}

	first, err := svc.CreateInvoice(invoiceParamsFixture())
	require.NoError(t, err)

	second, err := svc.CreateInvoice(invoiceParamsFixture())
	require.True(t, errors.Is(err, ErrInvoiceExists))
	require.NotNil(t, second)
	assert.Equal(t, first.InvoiceNo, second.InvoiceNo)

	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestBillingOverrideFromApprovedRequest(t *testing.T) {
	db, mockEmail := setupInvoiceTest(t)
	svc := &InvoiceService{}

	courseID := uint(7)
	older := models.InvoiceRequest{
		Email: "billing@client.example", CourseID: &courseID,
		BillingEmail: "old-accounts@client.example",
		Status:       models.RequestApproved,
		CreatedAt:    time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, db.Create(&older).Error)

	latest := models.InvoiceRequest{
		Email: "billing@client.example", CourseID: &courseID,
		BillingName:    "Client Accounts Dept",
		BillingEmail:   "accounts@client.example",
		BillingAddress: "PO Box 99",
		Status:         models.RequestApproved,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&latest).Error)

	pending := models.InvoiceRequest{
		Email: "billing@client.example", CourseID: &courseID,
		BillingEmail: "never@client.example",
		Status:       models.RequestPending,
	}
	require.NoError(t, db.Create(&pending).Error)

	_, err := svc.CreateInvoice(invoiceParamsFixture())
	require.NoError(t, err)

	// The most recent APPROVED request wins; PENDING is ignored
	var inv models.Invoice
	require.NoError(t, db.First(&inv).Error)
	assert.Equal(t, "accounts@client.example", inv.Email)
	assert.Equal(t, "Client Accounts Dept", inv.Name)
	assert.Equal(t, "PO Box 99", inv.Address)

	messages := mockEmail.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "accounts@client.example", messages[0].To)
}

func TestBillingOverrideIgnoresOtherCourses(t *testing.T) {
	db, _ := setupInvoiceTest(t)
	svc := &InvoiceService{}

	otherCourse := uint(99)
	req := models.InvoiceRequest{
		Email: "billing@client.example", CourseID: &otherCourse,
		BillingEmail: "accounts@client.example",
		Status:       models.RequestApproved,
	}
	require.NoError(t, db.Create(&req).Error)

	_, err := svc.CreateInvoice(invoiceParamsFixture())
	require.NoError(t, err)

	var inv models.Invoice
	require.NoError(t, db.First(&inv).Error)
	assert.Equal(t, "billing@client.example", inv.Email)
}
