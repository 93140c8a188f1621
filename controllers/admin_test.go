package controllers

import (
	"net/http"
	"testing"
	"time"

	"cropwise/config"
	"cropwise/jobs"
	"cropwise/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "farmer@example.com")

	w := app.do(http.MethodGet, "/admin/users", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(http.MethodPost, "/admin/promote", gin.H{"email": "farmer@example.com"}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = app.do(http.MethodPost, "/admin/sweep", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminPromoteAndListUsers(t *testing.T) {
	app := newTestApp(t)
	admin := app.signUp(t, "admin@example.com")
	app.signUp(t, "farmer@example.com")

	n, err := SetRole("admin@example.com", RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	w := app.do(http.MethodPost, "/admin/promote", gin.H{"email": "Farmer@Example.com"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(http.MethodPost, "/admin/promote", gin.H{"email": "nobody@example.com"}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/admin/users", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]models.User](t, w)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, RoleAdmin, u.Role, u.Email)
	}
}

func TestAdminRunSweep(t *testing.T) {
	app := newTestApp(t)
	admin := app.signUp(t, "admin@example.com")
	_, err := SetRole("admin@example.com", RoleAdmin)
	require.NoError(t, err)

	w := app.do(http.MethodPost, "/admin/sweep", nil, admin)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, config.DB.Create(&models.RevokedToken{JTI: "old", ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	app.handler.Sweeper = jobs.NewSweeper(config.DB, nil, time.Hour, nil)

	w = app.do(http.MethodPost, "/admin/sweep", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, jobs.Report{Purged: 1}, decode[jobs.Report](t, w))
}
