package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"autopecas/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// janela counts hits of one key inside a fixed window.
type janela struct {
	hits int
	fim  time.Time
}

// limitador is a fixed-window counter per key. Each middleware owns one, so
// the login, API and upload limits never share counters.
type limitador struct {
	nome    string
	limite  int
	duracao time.Duration

	mu        sync.Mutex
	janelas   map[string]*janela
	limpezaEm time.Time
}

func novoLimitador(nome string, limite int, duracao time.Duration) *limitador {
	return &limitador{
		nome:    nome,
		limite:  limite,
		duracao: duracao,
		janelas: make(map[string]*janela),
	}
}

// permitir registers a hit for key. When the key is over the limit it returns
// false and how long until its window reopens.
func (l *limitador) permitir(key string, agora time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.limparExpiradas(agora)

	j, ok := l.janelas[key]
	if !ok || agora.After(j.fim) {
		j = &janela{fim: agora.Add(l.duracao)}
		l.janelas[key] = j
	}
	j.hits++
	if j.hits > l.limite {
		return false, j.fim.Sub(agora)
	}
	return true, 0
}

// limparExpiradas drops closed windows at most once per window length.
// Caller holds l.mu.
func (l *limitador) limparExpiradas(agora time.Time) {
	if agora.Before(l.limpezaEm) {
		return
	}
	removidas := 0
	for k, j := range l.janelas {
		if agora.After(j.fim) {
			delete(l.janelas, k)
			removidas++
		}
	}
	l.limpezaEm = agora.Add(l.duracao)
	if removidas > 0 {
		log.Debug().
			Str("limitador", l.nome).
			Int("removidas", removidas).
			Int("restantes", len(l.janelas)).
			Msg("rate limiter: janelas expiradas removidas")
	}
}

func (l *limitador) middleware(chave func(*gin.Context) string, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, espera := l.permitir(chave(c), time.Now())
		if !ok {
			segundos := int(espera.Round(time.Second) / time.Second)
			if segundos < 1 {
				segundos = 1
			}
			c.Header("Retry-After", strconv.Itoa(segundos))
			log.Warn().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("limitador", l.nome).
				Str("ip", c.ClientIP()).
				Msg("rate limit excedido")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

func porIP(c *gin.Context) string { return c.ClientIP() }

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return novoLimitador("login", 20, time.Minute).
		middleware(porIP, "Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// RateLimiter caps every request per client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return novoLimitador("api", limit, window).
		middleware(porIP, "Muitas requisições. Tente novamente em instantes.")
}

// UploadRateLimiter caps document uploads per authenticated user, falling back
// to the client IP. It must run after JWTAuth.
func UploadRateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	porUsuario := func(c *gin.Context) string {
		if v, ok := c.Get(ClaimsKey); ok {
			if claims, _ := v.(*JWTClaims); claims != nil && claims.UserID != "" {
				return "usuario:" + claims.UserID
			}
		}
		return "ip:" + c.ClientIP()
	}
	return novoLimitador("upload", limit, window).
		middleware(porUsuario, "Muitos documentos enviados. Aguarde antes de importar novamente.")
}
