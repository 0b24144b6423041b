package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userapp "github.com/oksasatya/go-user-orders-api/internal/application"
	"github.com/oksasatya/go-user-orders-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-orders-api/pkg/helpers"
	mailtpl "github.com/oksasatya/go-user-orders-api/pkg/mailer/templates"
	"github.com/oksasatya/go-user-orders-api/pkg/validation"
)

const johnPayload = `{
	"userId": 1,
	"username": "johndoe",
	"password": "secret12",
	"fullName": {"firstName": "John", "lastName": "Doe"},
	"age": 30,
	"email": "John@Example.com",
	"isActive": true,
	"hobbies": ["reading", "chess"],
	"address": {"street": "Main St", "city": "Dhaka", "country": "Bangladesh"},
	"orders": [
		{"productName": "Keyboard", "price": 10, "quantity": 1},
		{"productName": "Mouse", "price": 5, "quantity": 2}
	]
}`

func newTestRouter(repo *memory.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := userapp.NewService(repo, helpers.NewHasher(bcrypt.MinCost), validation.New(), logger, nil, "", nil, mailtpl.Brand{})
	h := NewUserHandler(svc, logger)

	r := gin.New()
	r.GET("/", Root)
	users := r.Group("/api/users")
	users.POST("", h.Create)
	users.GET("", h.List)
	users.GET("/search", h.Search)
	users.GET("/:userId", h.Get)
	users.PUT("/:userId", h.Update)
	users.DELETE("/:userId", h.Delete)
	users.GET("/:userId/orders", h.Orders)
	users.GET("/:userId/orders/total-price", h.TotalPrice)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code        int    `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestRoot(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())
	w, _ := do(t, r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello World!", w.Body.String())
}

func TestCreateThenGet(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	w, env := do(t, r, http.MethodPost, "/api/users", johnPayload)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "User created successfully", env.Message)
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "secret12")

	w, env = do(t, r, http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user fetch successfully", env.Message)

	var u map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "john@example.com", u["email"])
	assert.Equal(t, map[string]any{"firstName": "John", "lastName": "Doe"}, u["fullName"])
	assert.NotContains(t, u, "password")
}

func TestCreateDuplicate(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	w, _ := do(t, r, http.MethodPost, "/api/users", johnPayload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/users", johnPayload)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "User already exist!", env.Message)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusOK, env.Error.Code)

	_, env = do(t, r, http.MethodGet, "/api/users", "")
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestCreateValidation(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	body := strings.Replace(johnPayload, `"age": 30`, `"age": 0`, 1)
	body = strings.Replace(body, `"username": "johndoe"`, `"username": "jo"`, 1)

	w, env := do(t, r, http.MethodPost, "/api/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Please enter username at least 3 character,Please enter age at least 1 digits", env.Message)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusBadRequest, env.Error.Code)
	assert.Equal(t, "User validation failed", env.Error.Description)
}

func TestCreateEmptyBody(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	w, env := do(t, r, http.MethodPost, "/api/users", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(env.Message, "userId is Required,username is Required"))
}

func TestCreateInvalidType(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	body := strings.Replace(johnPayload, `"age": 30`, `"age": "ten"`, 1)
	w, env := do(t, r, http.MethodPost, "/api/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "age has an invalid type", env.Message)
}

func TestCreateInvalidTypeReportsOtherViolations(t *testing.T) {
	repo := memory.NewUserRepository()
	r := newTestRouter(repo)

	body := strings.Replace(johnPayload, `"age": 30`, `"age": "ten"`, 1)
	body = strings.Replace(body, `"username": "johndoe"`, `"username": "jo"`, 1)
	body = strings.Replace(body, `"email": "John@Example.com"`, `"email": "bad"`, 1)

	w, env := do(t, r, http.MethodPost, "/api/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter username at least 3 character,age has an invalid type,Invalid email address", env.Message)
	assert.NotContains(t, env.Message, "age is Required")
	require.NotNil(t, env.Error)
	assert.Equal(t, "User validation failed", env.Error.Description)
	_, stored := repo.Stored(1)
	assert.False(t, stored)
}

func TestUpdateInvalidTypeReportsOtherViolations(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())
	w, _ := do(t, r, http.MethodPost, "/api/users", johnPayload)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodPut, "/api/users/1", `{"isActive": "yes", "email": "bad"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "isActive has an invalid type,Invalid email address", env.Message)
}

func TestCreateTopLevelTypeMismatch(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	w, env := do(t, r, http.MethodPost, "/api/users", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "payload has an invalid type", env.Message)
}

func TestCreateStoreFailure(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository().WithCreateError(errors.New("connection reset")))

	w, env := do(t, r, http.MethodPost, "/api/users", johnPayload)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "something went wrong", env.Message)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestUserIDMustBeNumber(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	w, env := do(t, r, http.MethodGet, "/api/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "userId must be a number", env.Message)
}

func TestUnknownUser(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/users/99", ""},
		{http.MethodPut, "/api/users/99", `{"age": 20}`},
		{http.MethodDelete, "/api/users/99", ""},
		{http.MethodGet, "/api/users/99/orders", ""},
		{http.MethodGet, "/api/users/99/orders/total-price", ""},
	} {
		w, env := do(t, r, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
		assert.Equal(t, "User not found", env.Message)
	}
}

func TestUpdateAppendsHobbies(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())
	do(t, r, http.MethodPost, "/api/users", johnPayload)

	w, env := do(t, r, http.MethodPut, "/api/users/1", `{"hobbies": ["x"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "User updated successfully", env.Message)

	var u struct {
		Hobbies []string `json:"hobbies"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, []string{"reading", "chess", "x"}, u.Hobbies)
}

func TestDeleteThenGet(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())
	do(t, r, http.MethodPost, "/api/users", johnPayload)

	w, env := do(t, r, http.MethodDelete, "/api/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deletedCount": 1}`, string(env.Data))

	w, _ = do(t, r, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrdersAndTotalPrice(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())
	do(t, r, http.MethodPost, "/api/users", johnPayload)

	w, env := do(t, r, http.MethodGet, "/api/users/1/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"orders":[
		{"productName":"Keyboard","price":10,"quantity":1},
		{"productName":"Mouse","price":5,"quantity":2}
	]}`, string(env.Data))

	w, env = do(t, r, http.MethodGet, "/api/users/1/orders/total-price", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalOrdersPrice": 15}`, string(env.Data))
}

func TestListHidesInactive(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())
	do(t, r, http.MethodPost, "/api/users", johnPayload)

	inactive := strings.NewReplacer(
		`"userId": 1`, `"userId": 2`,
		`"johndoe"`, `"sleeper"`,
		`John@Example.com`, `sleeper@example.com`,
		`"isActive": true`, `"isActive": false`,
	).Replace(johnPayload)
	w, _ := do(t, r, http.MethodPost, "/api/users", inactive)
	require.Equal(t, http.StatusCreated, w.Code)

	_, env := do(t, r, http.MethodGet, "/api/users", "")
	var list []struct {
		UserID int64 `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].UserID)
}

func TestSearchWithoutIndex(t *testing.T) {
	r := newTestRouter(memory.NewUserRepository())

	w, env := do(t, r, http.MethodGet, "/api/users/search?q=john", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = do(t, r, http.MethodGet, "/api/users/search", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
