package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vinimatheus/avocado-saas-starter-sub001/testutils"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()
	os.Setenv("JWT_SECRET", "test-secret")

	exitCode := m.Run()

	os.Unsetenv("JWT_SECRET")
	os.Exit(exitCode)
}

func setupAuthRouter() *gin.Engine {
	r := testutils.SetupTestRouter()
	r.POST("/register", Register)
	r.POST("/login", Login)
	return r
}

func postJSON(r *gin.Engine, path string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func userColumns() []string {
	return []string{"id", "email", "password", "user_name", "role", "enable", "created_at", "updated_at"}
}

func TestRegister_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("new@example.com", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("user-uuid"))
	mock.ExpectCommit()

	w := postJSON(r, "/register", []byte(`{"email":"new@example.com","password":"Secret123","username":"newuser"}`))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "new@example.com")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_InvalidEmail(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	w := postJSON(r, "/register", []byte(`{"email":"not-an-email","password":"Secret123"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_WeakPassword(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	// No uppercase and no digit.
	w := postJSON(r, "/register", []byte(`{"email":"new@example.com","password":"secretpw"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("taken@example.com", 1).
		WillReturnRows(mock.NewRows(userColumns()).
			AddRow("user-uuid", "taken@example.com", "hash", "taken", "USER", true, time.Now(), time.Now()))

	w := postJSON(r, "/register", []byte(`{"email":"taken@example.com","password":"Secret123"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	hash, err := bcrypt.GenerateFromPassword([]byte("Secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("user@example.com", 1).
		WillReturnRows(mock.NewRows(userColumns()).
			AddRow("user-uuid", "user@example.com", string(hash), "user", "USER", true, time.Now(), time.Now()))

	w := postJSON(r, "/login", []byte(`{"email":"user@example.com","password":"Secret123"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
}

func TestLogin_WrongPassword(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Secret123"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("user@example.com", 1).
		WillReturnRows(mock.NewRows(userColumns()).
			AddRow("user-uuid", "user@example.com", string(hash), "user", "USER", true, time.Now(), time.Now()))

	w := postJSON(r, "/login", []byte(`{"email":"user@example.com","password":"WrongPass1"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("ghost@example.com", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	w := postJSON(r, "/login", []byte(`{"email":"ghost@example.com","password":"Secret123"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_DisabledAccount(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	hash, _ := bcrypt.GenerateFromPassword([]byte("Secret123"), bcrypt.DefaultCost)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("user@example.com", 1).
		WillReturnRows(mock.NewRows(userColumns()).
			AddRow("user-uuid", "user@example.com", string(hash), "user", "USER", false, time.Now(), time.Now()))

	w := postJSON(r, "/login", []byte(`{"email":"user@example.com","password":"Secret123"}`))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRegister_MissingBody(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	r := setupAuthRouter()

	w := postJSON(r, "/register", []byte(`{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
