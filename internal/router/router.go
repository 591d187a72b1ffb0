package router

import (
	"pedidos/internal/config"
	"pedidos/internal/handler"
	"pedidos/internal/infra"
	"pedidos/internal/middleware"
	"pedidos/internal/repository"
	"pedidos/internal/service"
	"pedidos/internal/web"
	"pedidos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// rdb may be nil: sessions then cannot be revoked and no e-mail is queued.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	loc := cfg.Location()

	tmpl, err := web.Templates(loc)
	if err != nil {
		return nil, errors.Annotate(err, "parse templates")
	}

	// ── Infrastructure ───────────────────────────────────────────────────────
	almacen := infra.NewMediaStorage(cfg.MediaRoot)
	var (
		revocaciones service.Revocaciones
		cola         service.EncoladorEmail
	)
	if rdb != nil {
		revocaciones = infra.NewRevocacionesRedis(rdb)
		cola = worker.NewDispatcher(rdb)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	comentarioRepo := repository.NewComentarioRepository(db)
	insumoRepo := repository.NewInsumoRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, revocaciones, cfg)
	notificador := service.NewNotificador(cfg, cola)
	catalogoSvc := service.NewCatalogoService(categoriaRepo, productoRepo, comentarioRepo)
	categoriaSvc := service.NewCategoriaService(categoriaRepo, productoRepo)
	productoSvc := service.NewProductoService(productoRepo, categoriaRepo, almacen)
	comentarioSvc := service.NewComentarioService(comentarioRepo, productoRepo)
	insumoSvc := service.NewInsumoService(insumoRepo)
	pedidoSvc := service.NewPedidoService(pedidoRepo, productoRepo, almacen, notificador, loc)
	reporteSvc := service.NewReporteService(pedidoRepo, loc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	tiendaH := handler.NewTiendaHandler(catalogoSvc, pedidoSvc, productoSvc, cfg.BaseURL)
	authH := handler.NewAuthHandler(authSvc, cfg.IsProduction())
	reporteH := handler.NewReporteHandler(reporteSvc)
	insumosH := handler.NewInsumosAPIHandler(insumoSvc)
	pedidosH := handler.NewPedidosAPIHandler(pedidoSvc)
	adminH := handler.NewAdminHandler(categoriaSvc, productoSvc, insumoSvc, pedidoSvc, comentarioSvc, cfg.BaseURL)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = 32 << 20
	// Operations an endpoint leaves out answer 405, not 404.
	r.HandleMethodNotAllowed = true
	r.NoMethod(handler.MetodoNoPermitido)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitRPS))
	r.Use(middleware.CargarSesion(authSvc))

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	// Storefront
	r.GET("/", tiendaH.Catalogo)
	r.GET("/producto/:slug/", tiendaH.Producto)
	r.POST("/producto/:slug/", tiendaH.Producto)
	r.GET("/solicitar/", tiendaH.Solicitar)
	r.POST("/solicitar/", tiendaH.Solicitar)
	r.GET("/solicitar/:id/", tiendaH.Solicitar)
	r.POST("/solicitar/:id/", tiendaH.Solicitar)
	r.GET("/seguimiento/:token/", tiendaH.Seguimiento)

	// Staff login
	r.GET("/login/", authH.Formulario)
	r.POST("/login/", middleware.LoginRateLimiter(), authH.Login)
	r.POST("/logout/", authH.Logout)

	reporte := r.Group("/reporte", middleware.SesionRequerida())
	{
		reporte.GET("/", reporteH.Ver)
		reporte.GET("/pdf/", reporteH.PDF)
	}

	// REST API
	api := r.Group("/api")
	{
		api.GET("/", handler.Raiz)

		api.GET("/insumos/", insumosH.Listar)
		api.POST("/insumos/", insumosH.Crear)
		api.GET("/insumos/:id/", insumosH.Obtener)
		api.PUT("/insumos/:id/", insumosH.Reemplazar)
		api.PATCH("/insumos/:id/", insumosH.ActualizarParcial)
		api.DELETE("/insumos/:id/", insumosH.Eliminar)

		api.POST("/pedidos/", pedidosH.Crear)
		api.GET("/pedidos/filtrar/", pedidosH.Filtrar)
		api.PUT("/pedidos/:id/", pedidosH.Reemplazar)
		api.PATCH("/pedidos/:id/", pedidosH.ActualizarParcial)
	}

	// Staff screens
	admin := r.Group("/admin", middleware.SesionRequerida(), middleware.SoloStaff())
	{
		admin.GET("/", adminH.Index)
		secciones := []struct {
			ruta       string
			lista, uno gin.HandlerFunc
		}{
			{"categorias", adminH.ListaCategorias, adminH.Categoria},
			{"productos", adminH.ListaProductos, adminH.Producto},
			{"comentarios", adminH.ListaComentarios, adminH.Comentario},
			{"insumos", adminH.ListaInsumos, adminH.Insumo},
			{"pedidos", adminH.ListaPedidos, adminH.Pedido},
		}
		for _, s := range secciones {
			g := admin.Group("/" + s.ruta)
			g.GET("/", s.lista)
			g.POST("/accion/", adminH.Accion(s.ruta))
			g.GET("/nuevo/", s.uno)
			g.POST("/nuevo/", s.uno)
			g.GET("/:id/", s.uno)
			g.POST("/:id/", s.uno)
			g.POST("/:id/eliminar/", adminH.Eliminar(s.ruta))
		}
	}

	// Uploaded media and Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.Static("/media", almacen.Root())
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
