package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/entities"
)

type fakeUserStore struct {
	users map[uint]*entities.User
}

func (s *fakeUserStore) GetByID(id uint) (*entities.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func newAuthTestRouter(store *fakeUserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireAuth(testSecret, store), func(c *gin.Context) {
		principal, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user_id": principal.UserID})
	})
	router.GET("/admin", RequireAuth(testSecret, store), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	memberID := uint(7)
	store := &fakeUserStore{users: map[uint]*entities.User{
		1: {ID: 1, Email: "member@example.com", Role: entities.RoleMember, MemberID: &memberID, IsActive: true},
		2: {ID: 2, Email: "inactive@example.com", Role: entities.RoleMember, IsActive: false},
	}}
	router := newAuthTestRouter(store)

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(router, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := IssueToken(1, entities.RoleMember, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "/protected", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":1`)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		token, err := IssueToken(99, entities.RoleMember, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "/protected", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("inactive account", func(t *testing.T) {
		token, err := IssueToken(2, entities.RoleMember, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "/protected", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := IssueToken(1, entities.RoleMember, testSecret, -time.Minute)
		require.NoError(t, err)

		w := doRequest(router, "/protected", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	store := &fakeUserStore{users: map[uint]*entities.User{
		1: {ID: 1, Email: "member@example.com", Role: entities.RoleMember, IsActive: true},
		2: {ID: 2, Email: "admin@example.com", Role: entities.RoleAdmin, IsActive: true},
	}}
	router := newAuthTestRouter(store)

	t.Run("member gets 403", func(t *testing.T) {
		token, err := IssueToken(1, entities.RoleMember, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "/admin", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin gets through", func(t *testing.T) {
		token, err := IssueToken(2, entities.RoleAdmin, testSecret, time.Hour)
		require.NoError(t, err)

		w := doRequest(router, "/admin", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRoleInTokenDoesNotOverrideStore(t *testing.T) {
	// the stored role wins over whatever the token claims
	store := &fakeUserStore{users: map[uint]*entities.User{
		1: {ID: 1, Email: "member@example.com", Role: entities.RoleMember, IsActive: true},
	}}
	router := newAuthTestRouter(store)

	token, err := IssueToken(1, entities.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	w := doRequest(router, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
