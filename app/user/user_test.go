package user

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cwt/backend-api/internal"
	"cwt/backend-api/internal/model"
	"cwt/backend-api/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}))

	d := &internal.Deps{DB: db}

	r := gin.New()
	r.Use(middleware.NewRequestIDMiddleware())
	r.POST("/api/users/register", func(c *gin.Context) { Register(c, d) })
	r.GET("/api/users", func(c *gin.Context) { List(c, d) })
	r.GET("/api/users/uid/:uid", func(c *gin.Context) { FetchByUID(c, d) })
	r.GET("/api/users/check/:email", func(c *gin.Context) { Check(c, d) })
	r.PATCH("/api/users/uid/:uid", func(c *gin.Context) { Update(c, d) })

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	return w.Code, resp
}

func register(t *testing.T, r *gin.Engine, uid, email, name string) (int, map[string]any) {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/api/users/register",
		fmt.Sprintf(`{"uid":%q,"email":%q,"name":%q}`, uid, email, name))
}

func TestRegisterCreatesWithDefaults(t *testing.T) {
	r, db := newTestRouter(t)

	code, resp := register(t, r, "uid-1", "jo@example.com", "Jo")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User registered", resp["message"])

	var u model.User
	require.NoError(t, db.Where("uid = ?", "uid-1").First(&u).Error)
	assert.Equal(t, "student", u.Role)
	assert.Equal(t, "active", u.Status)
	assert.Equal(t, "Jo", u.DisplayName)
	assert.False(t, u.EmailVerified)
	assert.NotEmpty(t, u.ID)
	assert.Contains(t, u.SocialLinks, "github")
}

func TestRegisterIsIdempotent(t *testing.T) {
	r, db := newTestRouter(t)

	code, _ := register(t, r, "uid-1", "jo@example.com", "Jo")
	require.Equal(t, http.StatusCreated, code)

	code, resp := register(t, r, "uid-1", "jo@example.com", "Jo")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "User exists", resp["message"])

	var n int64
	db.Model(model.User{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestRegisterMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	code, resp := doJSON(t, r, http.MethodPost, "/api/users/register", `{"uid":"uid-1"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, resp["success"])
}

func TestFetchByUID(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "uid-1", "jo@example.com", "Jo")

	code, resp := doJSON(t, r, http.MethodGet, "/api/users/uid/uid-1", "")
	require.Equal(t, http.StatusOK, code)

	u := resp["user"].(map[string]any)
	assert.Equal(t, "jo@example.com", u["email"])

	code, _ = doJSON(t, r, http.MethodGet, "/api/users/uid/missing", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCheckNeverNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	register(t, r, "uid-1", "jo@example.com", "Jo")

	code, resp := doJSON(t, r, http.MethodGet, "/api/users/check/jo@example.com", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["exists"])

	code, resp = doJSON(t, r, http.MethodGet, "/api/users/check/nobody@example.com", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, resp["exists"])
}

func TestUpdateIgnoresImmutableFields(t *testing.T) {
	r, db := newTestRouter(t)
	register(t, r, "uid-1", "jo@example.com", "Jo")

	code, resp := doJSON(t, r, http.MethodPatch, "/api/users/uid/uid-1",
		`{"bio":"hello","email":"stolen@example.com","uid":"uid-9","city":"Dhaka"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Profile updated", resp["message"])

	var u model.User
	require.NoError(t, db.Where("uid = ?", "uid-1").First(&u).Error)
	assert.Equal(t, "hello", u.Bio)
	assert.Equal(t, "Dhaka", u.City)
	assert.Equal(t, "jo@example.com", u.Email)
}

func TestUpdateUnknownUser(t *testing.T) {
	r, _ := newTestRouter(t)

	code, _ := doJSON(t, r, http.MethodPatch, "/api/users/uid/missing", `{"bio":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
}
