package router

import (
	"strings"
	"time"

	"autopecas/internal/config"
	"autopecas/internal/handler"
	"autopecas/internal/infra"
	"autopecas/internal/middleware"
	"autopecas/internal/repository"
	"autopecas/internal/service"
	"autopecas/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const precoCacheTTL = 4 * time.Hour

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: import locks, the price cache and report jobs are then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(strings.Split(cfg.CORSOrigins, ",")...))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	locker := infra.NewRedisLocker(rdb, time.Duration(cfg.ImportLockTTLSegundos)*time.Second)
	cache := infra.NewCachePrecos(rdb, precoCacheTTL)
	var dispatcher *worker.Dispatcher
	if rdb != nil {
		dispatcher = worker.NewDispatcher(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	fornecedorRepo := repository.NewFornecedorRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	notaRepo := repository.NewNotaEntradaRepository(db)
	eventoRepo := repository.NewEventoNotaEntradaRepository(db)
	movimentacaoRepo := repository.NewMovimentacaoEstoqueRepository(db)
	historicoRepo := repository.NewHistoricoPrecoRepository(db)
	cotacaoRepo := repository.NewCotacaoFornecedorRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	fornecedorSvc := service.NewFornecedorService(fornecedorRepo, cotacaoRepo)
	produtoSvc := service.NewProdutoService(produtoRepo, historicoRepo, movimentacaoRepo, cotacaoRepo)
	notaSvc := service.NewNotaEntradaService(service.NotaEntradaDeps{
		Notas:         notaRepo,
		Produtos:      produtoRepo,
		Fornecedores:  fornecedorRepo,
		Movimentacoes: movimentacaoRepo,
		Historico:     historicoRepo,
		Cotacoes:      cotacaoRepo,
		Usuarios:      usuarioRepo,
		Auditoria:     service.NewAuditoriaService(eventoRepo),
		Locker:        locker,
		Cache:         cache,
		Dispatcher:    dispatcher,
		Config: service.NotaEntradaConfig{
			MargemPadrao: decimal.NewFromFloat(cfg.MargemPadrao),
			NomeEmpresa:  cfg.NomeEmpresa,
		},
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	fornecedoresH := handler.NewFornecedoresHandler(fornecedorSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc)
	consultaH := handler.NewConsultaPrecosHandler(produtoRepo, cache)
	comprasH := handler.NewComprasHandler(notaSvc, cfg.MaxUploadXMLBytes, cfg.MaxUploadPDFBytes)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check, no auth required
	r.GET("/v1/preco/:barcode", consultaH.PorCodigoBarras)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: comprador, estoquista, administrador
		todos := middleware.RequireRole("comprador", "estoquista", "administrador")
		compradores := middleware.RequireRole("comprador", "administrador")
		uploads := middleware.UploadRateLimiter(60, time.Minute)

		compras := v1.Group("/compras")
		{
			// Reads and conference are open to the stock team
			compras.GET("/notas", todos, comprasH.Listar)
			compras.GET("/notas/:id", todos, comprasH.ObterPorID)
			compras.GET("/notas/:id/eventos", todos, comprasH.Eventos)
			compras.GET("/notas/:id/itens.xlsx", todos, comprasH.ExportarXLSX)
			compras.GET("/notas/:id/relatorio.pdf", todos, comprasH.RelatorioPDF)
			compras.POST("/notas/:id/itens/:item_id/conferir", todos, comprasH.ConferirItem)
			compras.POST("/notas/:id/conferir-todos", todos, comprasH.ConferirTodos)

			// Document intake, linking, pricing and lifecycle belong to purchasing
			compras.POST("/documentos/analisar", compradores, comprasH.Analisar)
			compras.POST("/notas", compradores, comprasH.Criar)
			compras.POST("/notas/importar-xml", compradores, uploads, comprasH.ImportarXML)
			compras.POST("/notas/importar-pdf", compradores, uploads, comprasH.ImportarPDF)
			compras.PATCH("/notas/:id/opcoes", compradores, comprasH.AtualizarOpcoes)
			compras.POST("/notas/:id/itens", compradores, comprasH.AdicionarItem)
			compras.DELETE("/notas/:id/itens/:item_id", compradores, comprasH.RemoverItem)
			compras.POST("/notas/:id/itens/:item_id/vincular", compradores, comprasH.VincularProduto)
			compras.DELETE("/notas/:id/itens/:item_id/vincular", compradores, comprasH.DesvincularProduto)
			compras.POST("/notas/:id/vincular-automatico", compradores, comprasH.VincularAutomaticamente)
			compras.POST("/notas/:id/itens/:item_id/criar-produto", compradores, comprasH.CriarProduto)
			compras.POST("/notas/:id/finalizar", compradores, comprasH.Finalizar)
			compras.POST("/notas/:id/cancelar", compradores, comprasH.Cancelar)
		}

		v1.GET("/produtos", todos, produtosH.Listar)
		v1.GET("/produtos/:id", todos, produtosH.ObterPorID)
		v1.GET("/produtos/:id/historico-precos", todos, produtosH.HistoricoPrecos)
		v1.GET("/produtos/:id/cotacoes", compradores, produtosH.Cotacoes)
		v1.GET("/estoque/movimentacoes", todos, produtosH.Movimentacoes)

		v1.GET("/fornecedores", todos, fornecedoresH.Listar)
		v1.GET("/fornecedores/:id", todos, fornecedoresH.ObterPorID)
		v1.GET("/fornecedores/:id/cotacoes", compradores, fornecedoresH.Cotacoes)
		v1.POST("/fornecedores", compradores, fornecedoresH.Criar)

		// Categorias: administrador can write, all authenticated can read
		v1.GET("/categorias", todos, categoriasH.Listar)
		categorias := v1.Group("/categorias", middleware.RequireRole("administrador"))
		{
			categorias.POST("", categoriasH.Criar)
			categorias.PUT("/:id", categoriasH.Atualizar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
