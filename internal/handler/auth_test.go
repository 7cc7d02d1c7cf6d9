package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-assistant/internal/config"
	"github.com/iliyamo/restaurant-assistant/internal/repository"
	"github.com/iliyamo/restaurant-assistant/internal/utils"
)

func newAuthHandler(t *testing.T) (*echo.Echo, *AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	e := echo.New()
	e.Validator = NewValidator()
	return e, NewAuthHandler(cfg, repository.NewStaffRepo(db), repository.NewTokenRepo(db)), mock
}

var staffCols = []string{"id", "email", "password_hash", "role", "is_active", "created_at", "updated_at"}

func TestLogin(t *testing.T) {
	e, h, mock := newAuthHandler(t)
	hash, err := utils.HashPassword("correct horse", 4)
	require.NoError(t, err)
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM staff_users WHERE email=").
		WithArgs("host@bellavista.com").
		WillReturnRows(sqlmock.NewRows(staffCols).AddRow(3, "host@bellavista.com", hash, "STAFF", true, now, now))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := call(e, h.Login, http.MethodPost, "/v1/auth/login", `{"email":"Host@BellaVista.com","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	access := body["access"].(map[string]interface{})["token"].(string)
	claims, err := utils.ParseAccessToken("test-secret", access)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), claims.StaffID)
	assert.Equal(t, "STAFF", claims.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e, h, mock := newAuthHandler(t)
	hash, err := utils.HashPassword("correct horse", 4)
	require.NoError(t, err)
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM staff_users WHERE email=").
		WillReturnRows(sqlmock.NewRows(staffCols))
	rec := call(e, h.Login, http.MethodPost, "/v1/auth/login", `{"email":"nobody@bellavista.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	mock.ExpectQuery("SELECT .* FROM staff_users WHERE email=").
		WillReturnRows(sqlmock.NewRows(staffCols).AddRow(3, "host@bellavista.com", hash, "STAFF", true, now, now))
	rec = call(e, h.Login, http.MethodPost, "/v1/auth/login", `{"email":"host@bellavista.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	mock.ExpectQuery("SELECT .* FROM staff_users WHERE email=").
		WillReturnRows(sqlmock.NewRows(staffCols).AddRow(3, "host@bellavista.com", hash, "STAFF", false, now, now))
	rec = call(e, h.Login, http.MethodPost, "/v1/auth/login", `{"email":"host@bellavista.com","password":"correct horse"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(e, h.Login, http.MethodPost, "/v1/auth/login", `{"email":"host@bellavista.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStaff(t *testing.T) {
	e, h, mock := newAuthHandler(t)

	mock.ExpectExec("INSERT INTO staff_users").
		WithArgs("waiter@bellavista.com", sqlmock.AnyArg(), "STAFF").
		WillReturnResult(sqlmock.NewResult(8, 1))
	rec := call(e, h.CreateStaff, http.MethodPost, "/v1/admin/staff", `{"email":"waiter@bellavista.com","password":"long enough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(8), body["id"])
	assert.Equal(t, "STAFF", body["role"])

	mock.ExpectExec("INSERT INTO staff_users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))
	rec = call(e, h.CreateStaff, http.MethodPost, "/v1/admin/staff", `{"email":"waiter@bellavista.com","password":"long enough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutWithRefreshToken(t *testing.T) {
	e, h, mock := newAuthHandler(t)
	raw := "abc123"
	hash := utils.HashRefreshRaw(raw)

	mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(3, time.Now().UTC().Add(time.Hour), nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := call(e, h.Logout, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"abc123"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(e, h.Logout, http.MethodPost, "/v1/auth/logout", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
