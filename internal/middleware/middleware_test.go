package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware_test_secret_32_chars!!"

func signToken(t *testing.T, userID, rol string, dur time.Duration, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "rol": rol,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func ginTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	protected := r.Group("", JWTAuth(testSecret))
	protected.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c).String(), "rol": GetClaims(c).Rol})
	})
	protected.GET("/admin", RequireRole("administrador"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := ginTestRouter()
	userID := uuid.New()

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"sem token", "", http.StatusUnauthorized},
		{"token válido", signToken(t, userID.String(), "comprador", time.Hour, testSecret), http.StatusOK},
		{"token expirado", signToken(t, userID.String(), "comprador", -time.Second, testSecret), http.StatusUnauthorized},
		{"assinatura errada", signToken(t, userID.String(), "comprador", time.Hour, "outro-segredo"), http.StatusUnauthorized},
		{"lixo", "isto.nao.e.jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/protected", tt.token)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := get(r, "/protected", signToken(t, userID.String(), "estoquista", time.Hour, testSecret))
	assert.JSONEq(t, `{"user_id":"`+userID.String()+`","rol":"estoquista"}`, w.Body.String())
}

func TestUserID_MalformadoViraNil(t *testing.T) {
	r := ginTestRouter()
	w := get(r, "/protected", signToken(t, "nao-e-uuid", "comprador", time.Hour, testSecret))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uuid.Nil.String())
}

func TestRequireRole(t *testing.T) {
	r := ginTestRouter()

	w := get(r, "/admin", signToken(t, uuid.NewString(), "comprador", time.Hour, testSecret))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/admin", signToken(t, uuid.NewString(), "administrador", time.Hour, testSecret))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_NaoVazaDetalhes(t *testing.T) {
	r := ginTestRouter()

	w := get(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	rid := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, rid)
	assert.JSONEq(t, `{"detail":"Erro interno do servidor","request_id":"`+rid+`"}`, w.Body.String())
}

func TestErrorHandler_ErroNaoTratado(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/falha", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })
	r.GET("/tarde", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		_ = c.Error(errors.New("depois da resposta"))
	})

	w := get(r, "/falha", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = get(r, "/tarde", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pedir := func(r http.Handler, metodo, origem string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(metodo, "/", nil)
		req.Header.Set("Origin", origem)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	novo := func(origins ...string) *gin.Engine {
		r := gin.New()
		r.Use(CORS(origins...))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	w := pedir(novo(), http.MethodOptions, "http://qualquer.local")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	restrito := novo("https://compras.autopecas.local", " https://estoque.autopecas.local")
	w = pedir(restrito, http.MethodGet, "https://estoque.autopecas.local")
	assert.Equal(t, "https://estoque.autopecas.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = pedir(restrito, http.MethodGet, "https://outro.local")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(2, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := func() int {
		rq, _ := http.NewRequest(http.MethodGet, "/", nil)
		rq.RemoteAddr = "203.0.113.9:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, rq)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, req())
	assert.Equal(t, http.StatusNoContent, req())
	assert.Equal(t, http.StatusTooManyRequests, req())
}

func TestLimitador_JanelaPorChave(t *testing.T) {
	l := novoLimitador("teste", 2, time.Minute)
	t0 := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

	ok, _ := l.permitir("a", t0)
	assert.True(t, ok)
	ok, _ = l.permitir("a", t0.Add(time.Second))
	assert.True(t, ok)
	ok, espera := l.permitir("a", t0.Add(2*time.Second))
	assert.False(t, ok)
	assert.Equal(t, 58*time.Second, espera)

	ok, _ = l.permitir("b", t0.Add(2*time.Second))
	assert.True(t, ok, "keys do not share a window")

	ok, _ = l.permitir("a", t0.Add(63*time.Second))
	assert.True(t, ok, "window reopens")
	assert.Len(t, l.janelas, 1, "expired windows are dropped")
}

func TestUploadRateLimiter_PorUsuario(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(testSecret), UploadRateLimiter(1, time.Minute))
	r.POST("/upload", func(c *gin.Context) { c.Status(http.StatusCreated) })

	enviar := func(token string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/upload", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.RemoteAddr = "198.51.100.7:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	ana := signToken(t, uuid.NewString(), "comprador", time.Hour, testSecret)
	bia := signToken(t, uuid.NewString(), "comprador", time.Hour, testSecret)

	assert.Equal(t, http.StatusCreated, enviar(ana).Code)
	w := enviar(ana)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusCreated, enviar(bia).Code, "same IP, different user")
}
