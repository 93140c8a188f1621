package controllers

import (
	"net/http"
	"testing"

	"cropwise/config"
	"cropwise/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpRedirectsToDashboardWithoutProfile(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/auth/signup", gin.H{"email": "Farmer@Example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode[map[string]interface{}](t, w)
	assert.Equal(t, "/dashboard", resp["redirect"])
	assert.NotEmpty(t, resp["token"])
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "farmer@example.com", user["email"])
	assert.NotContains(t, user, "password")

	var profiles int64
	config.DB.Model(&models.Profile{}).Count(&profiles)
	assert.Zero(t, profiles)

	w = app.do(http.MethodGet, "/profile", nil, resp["token"].(string))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"profile":null}`, w.Body.String())
}

func TestSignUpDuplicate(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "a@example.com")

	w := app.do(http.MethodPost, "/auth/signup", gin.H{"email": "a@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"User already registered"}`, w.Body.String())
}

func TestSignUpValidation(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodPost, "/auth/signup", gin.H{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignIn(t *testing.T) {
	app := newTestApp(t)
	app.signUp(t, "b@example.com")

	w := app.do(http.MethodPost, "/auth/signin", gin.H{"email": "b@example.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid login credentials"}`, w.Body.String())

	w = app.do(http.MethodPost, "/auth/signin", gin.H{"email": "nobody@example.com", "password": "secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodPost, "/auth/signin", gin.H{"email": "b@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]interface{}](t, w)
	assert.Equal(t, "/dashboard", resp["redirect"])

	w = app.do(http.MethodGet, "/auth/me", nil, resp["token"].(string))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignOutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := app.signUp(t, "c@example.com")

	w := app.do(http.MethodPost, "/auth/signout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/dashboard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/dashboard", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodGet, "/no/such/page", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Page not found"}`, w.Body.String())
}
