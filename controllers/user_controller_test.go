package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/models"
)

func newUserRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/auth/login", Login)
	router.POST("/api/v1/users", CreateUser)
	router.GET("/api/v1/users", ListUsers)
	router.PATCH("/api/v1/users/:id", UpdateUser)
	return router
}

func seedUser(t *testing.T, db *gorm.DB, email, password, role string, active bool) models.User {
	t.Helper()

	user := models.User{Name: "Team Member", Email: email, Role: role, Active: active}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestLogin(t *testing.T) {
	db := setupRegistrationTestDB(t)
	cfg := config.GetConfig()
	cfg.JWTSecret = "test-secret"
	seedUser(t, db, "admin@summitworks.example", "swordfish123", models.RoleAdmin, true)
	seedUser(t, db, "left@summitworks.example", "swordfish123", models.RoleStaff, false)
	router := newUserRouter()

	tests := []struct {
		name     string
		email    string
		password string
		wantCode int
	}{
		{"valid credentials", "admin@summitworks.example", "swordfish123", http.StatusOK},
		{"wrong password", "admin@summitworks.example", "wrong", http.StatusUnauthorized},
		{"unknown email", "nobody@summitworks.example", "swordfish123", http.StatusUnauthorized},
		{"deactivated account", "left@summitworks.example", "swordfish123", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := performJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]interface{}{
				"email":    tt.email,
				"password": tt.password,
			})
			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode == http.StatusOK {
				data := response["data"].(map[string]interface{})
				assert.NotEmpty(t, data["token"])
				user := data["user"].(map[string]interface{})
				assert.NotContains(t, user, "password_hash", "Password hash never leaves the API")
			}
		})
	}
}

func TestCreateUser(t *testing.T) {
	db := setupRegistrationTestDB(t)
	router := newUserRouter()

	w, response := performJSON(t, router, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"name":     "New Starter",
		"email":    "starter@summitworks.example",
		"password": "longenough",
		"role":     models.RoleStaff,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, models.RoleStaff, data["role"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "starter@summitworks.example").First(&user).Error)
	assert.True(t, user.CheckPassword("longenough"))

	// Duplicate email is a conflict, not a server error
	w, response = performJSON(t, router, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"name":     "Duplicate",
		"email":    "starter@summitworks.example",
		"password": "longenough",
		"role":     models.RoleStaff,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, response["success"])
}

func TestCreateUserValidation(t *testing.T) {
	setupRegistrationTestDB(t)
	router := newUserRouter()

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"short password", map[string]interface{}{"name": "A", "email": "a@b.example", "password": "short", "role": "staff"}},
		{"unknown role", map[string]interface{}{"name": "A", "email": "a@b.example", "password": "longenough", "role": "superuser"}},
		{"missing email", map[string]interface{}{"name": "A", "password": "longenough", "role": "staff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := performJSON(t, router, http.MethodPost, "/api/v1/users", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestUpdateUser(t *testing.T) {
	db := setupRegistrationTestDB(t)
	user := seedUser(t, db, "staff@summitworks.example", "originalpass", models.RoleStaff, true)
	router := newUserRouter()

	w, _ := performJSON(t, router, http.MethodPatch,
		fmt.Sprintf("/api/v1/users/%d", user.ID),
		map[string]interface{}{"role": models.RoleAdmin, "active": false, "password": "replacement1"})
	assert.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)
	assert.False(t, reloaded.Active)
	assert.True(t, reloaded.CheckPassword("replacement1"))
	assert.False(t, reloaded.CheckPassword("originalpass"))

	w, _ = performJSON(t, router, http.MethodPatch,
		fmt.Sprintf("/api/v1/users/%d", user.ID),
		map[string]interface{}{"password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = performJSON(t, router, http.MethodPatch, "/api/v1/users/9999",
		map[string]interface{}{"active": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsers(t *testing.T) {
	db := setupRegistrationTestDB(t)
	seedUser(t, db, "one@summitworks.example", "longenough", models.RoleAdmin, true)
	seedUser(t, db, "two@summitworks.example", "longenough", models.RoleStaff, true)
	router := newUserRouter()

	w, response := performJSON(t, router, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, response["data"].([]interface{}), 2)
}
