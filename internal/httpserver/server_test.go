package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/validation"
)

type testServer struct {
	e       *echo.Echo
	db      *gorm.DB
	auth    *service.AuthService
	fileDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	r := repo.New(db)
	dir := t.TempDir()
	store, err := storage.NewLocal(dir, "/uploads")
	require.NoError(t, err)

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}
	cats := &service.CategoryService{Repo: r, Cache: testutil.NewMemoryCache(), CacheTTL: time.Minute}

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = httperr.Handler()

	Register(e, &Deps{
		DB:              db,
		Auth:            auth.New(authSvc),
		AuthHandler:     &AuthHTTP{Svc: authSvc},
		UserHandler:     &UserHTTP{Svc: &service.UserService{Repo: r, Auth: authSvc}},
		CategoryHandler: &CategoryHTTP{Svc: cats},
		GroupHandler:    &GroupHTTP{Svc: &service.GroupService{Repo: r}},
		ProductHandler: &ProductHTTP{Svc: &service.ProductService{
			Repo: r, Categories: cats, Storage: store, Events: events.Nop{}, MaxImages: 5,
		}},
		CartHandler:  &CartHTTP{Svc: &service.CartService{Repo: r, Events: events.Nop{}, MaxQuantity: 10}},
		OrderHandler: &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: events.Nop{}}},
	})

	return &testServer{e: e, db: db, auth: authSvc, fileDir: dir}
}

// tokenFor seeds a user with role and returns a bearer token for it.
func (s *testServer) tokenFor(t *testing.T, email string, role models.Role) (string, *models.User) {
	t.Helper()
	u := testutil.SeedUser(t, s.db, email, role)
	tok, err := s.auth.CreateAccessToken(u, time.Now().Add(time.Minute))
	require.NoError(t, err)
	return tok, u
}

func (s *testServer) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return s.send(req, token)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type message struct {
	Message string `json:"message"`
	Errors  []struct {
		Field string `json:"field"`
		Tag   string `json:"tag"`
	} `json:"errors"`
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
