package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autopecas/internal/config"
	"autopecas/internal/dto"
	"autopecas/internal/middleware"
	"autopecas/internal/model"
	"autopecas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[string]*model.Usuario
}

func newStubRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	u.ID = uuid.New()
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.users[username]
	if !ok || !u.Ativo {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	users := make([]model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func seedUser(t *testing.T, repo *stubUsuarioRepo, username, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{
		ID: uuid.New(), Username: username, Nome: "Usuário Teste",
		PasswordHash: string(hash), Rol: rol, Ativo: true,
	}
	repo.users[username] = u
	return u
}

func signToken(t *testing.T, userID, rol string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "rol": rol,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func authRouter(svc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	authH := NewAuthHandler(svc)
	r.POST("/login", authH.Login)
	r.POST("/refresh", authH.Refresh)

	usuariosH := NewUsuariosHandler(svc)
	admin := r.Group("/usuarios", middleware.JWTAuth(testSecret), middleware.RequireRole("administrador"))
	admin.POST("", usuariosH.Criar)
	admin.GET("", usuariosH.Listar)
	return r
}

// ── Tests: Login ──────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "admin", "password123", "administrador")
	r := authRouter(service.NewAuthService(repo, newTestCfg()))

	w := doJSON(t, r, http.MethodPost, "/login", dto.LoginRequest{Username: "admin", Password: "password123"}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "administrador", resp.User.Rol)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "compras1", "correctpass", "comprador")
	r := authRouter(service.NewAuthService(repo, newTestCfg()))

	w := doJSON(t, r, http.MethodPost, "/login", dto.LoginRequest{Username: "compras1", Password: "wrongpass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/login", dto.LoginRequest{Username: "noexiste", Password: "anypass123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_ShortPassword_Rejected(t *testing.T) {
	r := authRouter(service.NewAuthService(newStubRepo(), newTestCfg()))

	w := doJSON(t, r, http.MethodPost, "/login", dto.LoginRequest{Username: "u", Password: "12"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"Password":"min"`)
}

func TestLogin_MalformedJSON(t *testing.T) {
	r := authRouter(service.NewAuthService(newStubRepo(), newTestCfg()))

	req, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── Tests: Refresh ────────────────────────────────────────────────────────────

func TestRefresh(t *testing.T) {
	repo := newStubRepo()
	u := seedUser(t, repo, "estoque1", "pass1234", "estoquista")
	svc := service.NewAuthService(repo, newTestCfg())
	r := authRouter(svc)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "estoque1", Password: "pass1234"})
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/refresh", dto.RefreshRequest{RefreshToken: login.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, u.Username, resp.User.Username)

	w = doJSON(t, r, http.MethodPost, "/refresh", dto.RefreshRequest{RefreshToken: "this.is.garbage"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired := signToken(t, u.ID.String(), "estoquista", -time.Second)
	w = doJSON(t, r, http.MethodPost, "/refresh", dto.RefreshRequest{RefreshToken: expired}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ── Tests: Usuarios ───────────────────────────────────────────────────────────

func TestUsuarios_RequerAdministrador(t *testing.T) {
	r := authRouter(service.NewAuthService(newStubRepo(), newTestCfg()))

	w := doJSON(t, r, http.MethodGet, "/usuarios", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := signToken(t, uuid.NewString(), "comprador", time.Hour)
	w = doJSON(t, r, http.MethodGet, "/usuarios", nil, tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUsuarios_CriarEListar(t *testing.T) {
	repo := newStubRepo()
	r := authRouter(service.NewAuthService(repo, newTestCfg()))
	tok := signToken(t, uuid.NewString(), "administrador", time.Hour)

	novo := dto.CriarUsuarioRequest{Username: "ana", Nome: "Ana Estoque", Password: "segredo123", Rol: "estoquista"}
	w := doJSON(t, r, http.MethodPost, "/usuarios", novo, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	var criado dto.UsuarioResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &criado))
	assert.Equal(t, "estoquista", criado.Rol)
	assert.NotEmpty(t, criado.ID)

	w = doJSON(t, r, http.MethodPost, "/usuarios", novo, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "duplicate username")

	novo.Username, novo.Rol = "caixa", "cajero"
	w = doJSON(t, r, http.MethodPost, "/usuarios", novo, tok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "unknown role")

	w = doJSON(t, r, http.MethodGet, "/usuarios", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	var lista []dto.UsuarioResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lista))
	assert.Len(t, lista, 1)
}
