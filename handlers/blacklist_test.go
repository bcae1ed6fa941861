package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"phishing-detection-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, env *testEnv, email string) string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/auth/register", map[string]string{"email": email, "password": "correct-horse"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp AuthResponse
	decode(t, rec, &resp)
	return resp.Token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, "")

	rec := env.do(t, http.MethodPost, "/auth/register", map[string]string{"email": "Owner@Example.com", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg AuthResponse
	decode(t, rec, &reg)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "owner@example.com", reg.User.Email)
	assert.Equal(t, models.RoleAdmin, reg.User.Role, "first account is admin")
	assert.NotContains(t, rec.Body.String(), "password")

	tests := []struct {
		name string
		path string
		body map[string]string
		want int
	}{
		{"duplicate email", "/auth/register", map[string]string{"email": "owner@example.com", "password": "another-pass"}, http.StatusConflict},
		{"short password", "/auth/register", map[string]string{"email": "x@example.com", "password": "short"}, http.StatusBadRequest},
		{"bad email", "/auth/register", map[string]string{"email": "nope", "password": "long-enough"}, http.StatusBadRequest},
		{"login ok", "/auth/login", map[string]string{"email": "owner@example.com", "password": "correct-horse"}, http.StatusOK},
		{"login wrong password", "/auth/login", map[string]string{"email": "owner@example.com", "password": "wrong-horse"}, http.StatusUnauthorized},
		{"login unknown user", "/auth/login", map[string]string{"email": "ghost@example.com", "password": "whatever"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestBlacklistLifecycle(t *testing.T) {
	env := newTestEnv(t, "")
	adminToken := registerUser(t, env, "admin@example.com")
	userToken := registerUser(t, env, "user@example.com")
	const target = "https://paypa1-login.example.org/signin"

	rec := env.do(t, http.MethodPost, "/blacklist", map[string]string{"url": target}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/blacklist", map[string]string{"url": "ftp://nope"}, userToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/blacklist", map[string]interface{}{"url": target, "confidence": 1.5}, userToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/blacklist", map[string]string{"url": target}, userToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.URLBlacklist
	decode(t, rec, &created)
	assert.Equal(t, "example.org", created.Domain)
	assert.Equal(t, models.SourceManual, created.Source)
	assert.True(t, created.IsPhishing)
	assert.Equal(t, 1.0, created.Confidence)

	rec = env.do(t, http.MethodGet, "/blacklist/check?url="+target, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var check BlacklistCheckResponse
	decode(t, rec, &check)
	assert.True(t, check.Blacklisted)
	require.NotNil(t, check.Entry)

	rec = env.do(t, http.MethodGet, "/blacklist/check", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/predict/url", map[string]string{"url": target}, "")
	var pred PredictionResponse
	decode(t, rec, &pred)
	assert.True(t, pred.Blacklisted, "manual entries short-circuit the classifier")

	rec = env.do(t, http.MethodGet, "/blacklist?limit=10", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data  []models.URLBlacklist `json:"data"`
		Total int64                 `json:"total"`
		Limit int                   `json:"limit"`
	}
	decode(t, rec, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 10, page.Limit)

	rec = env.do(t, http.MethodGet, "/blacklist?limit=500", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := fmt.Sprintf("/blacklist/%d", created.ID)
	rec = env.do(t, http.MethodDelete, path, nil, userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, path, nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, path, nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/blacklist/abc", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
