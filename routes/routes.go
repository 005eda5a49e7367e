package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"inventory-server/auth"
	"inventory-server/cache"
	"inventory-server/config"
	"inventory-server/controllers"
	"inventory-server/middleware"
	"inventory-server/models"
	"inventory-server/store"
)

// Dependencies is everything the router needs to build its handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    store.Source
	Database controllers.StateReporter
	Tokens   *auth.TokenIssuer
	Hasher   *auth.Hasher
	Notifier auth.Notifier
	Cache    cache.Cache
	Now      func() time.Time
}

// routeGroup mounts one feature's handlers under its prefix.
type routeGroup struct {
	prefix string
	mount  func(g *gin.RouterGroup, d Dependencies)
}

var routeTable = []routeGroup{
	{prefix: "/api", mount: mountItems},
	{prefix: "/api/auth", mount: mountAuth},
	{prefix: "/api/warehouses", mount: mountWarehouses},
	{prefix: "/api/forecast", mount: mountForecast},
	{prefix: "/api/reorder", mount: mountReorder},
	{prefix: "/api/analytics", mount: mountAnalytics},
}

// NewRouter builds the engine: global middleware, the dedicated
// reset-password route, the route table, health probes and the 404
// fallback.
func NewRouter(d Dependencies) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Notifier == nil {
		d.Notifier = auth.LogNotifier{Logger: d.Logger}
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = false
	engine.Use(
		middleware.Recovery(d.Logger),
		middleware.RequestLogger(d.Logger),
		middleware.CORS(d.Config.CORS),
		middleware.JSONBody(d.Config.Server.MaxBodyBytes),
	)

	// Preflights that carry an Origin are answered by the CORS middleware;
	// this catches the rest.
	engine.OPTIONS("/*path", middleware.Preflight)

	health := &controllers.HealthController{Database: d.Database}
	engine.GET("/health", health.Health)
	engine.GET("/ready", health.Ready)

	// Registered before the auth group, which never defines this path.
	reset := &controllers.PasswordResetController{Store: d.Store, Hasher: d.Hasher, Now: d.Now}
	engine.POST("/api/auth/reset-password", reset.ResetPassword)

	for _, rg := range routeTable {
		rg.mount(engine.Group(rg.prefix), d)
	}

	engine.NoRoute(controllers.NotFound)
	return engine
}

func requireAuth(d Dependencies) gin.HandlerFunc {
	return middleware.RequireAuth(d.Tokens)
}

func mountItems(g *gin.RouterGroup, d Dependencies) {
	items := &controllers.ItemController{Store: d.Store, Now: d.Now}
	movements := &controllers.MovementController{Store: d.Store, Now: d.Now}
	authed := requireAuth(d)

	g.GET("/items", items.ListItems)
	g.POST("/items", authed, items.CreateItem)
	g.GET("/items/:id", items.GetItem)
	g.PUT("/items/:id", authed, items.UpdateItem)
	g.DELETE("/items/:id", authed, middleware.RequireRole(models.RoleAdmin), items.DeleteItem)

	g.POST("/items/:id/movements", authed, movements.RecordMovement)
	g.GET("/items/:id/movements", movements.ListMovements)
}

func mountAuth(g *gin.RouterGroup, d Dependencies) {
	h := &controllers.AuthController{
		Store:    d.Store,
		Tokens:   d.Tokens,
		Hasher:   d.Hasher,
		Notifier: d.Notifier,
		ResetTTL: d.Config.Auth.ResetTTL,
		Logger:   d.Logger,
		Now:      d.Now,
	}
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", requireAuth(d), h.Me)
	g.POST("/forgot-password", h.ForgotPassword)
}

func mountWarehouses(g *gin.RouterGroup, d Dependencies) {
	h := &controllers.WarehouseController{Store: d.Store, Now: d.Now}
	authed := requireAuth(d)

	g.GET("", h.ListWarehouses)
	g.POST("", authed, h.CreateWarehouse)
	g.GET("/:id", h.GetWarehouse)
	g.PUT("/:id", authed, h.UpdateWarehouse)
	g.DELETE("/:id", authed, middleware.RequireRole(models.RoleAdmin), h.DeleteWarehouse)
	g.GET("/:id/items", h.ListWarehouseItems)
	g.GET("/:id/utilization", h.Utilization)
}

func mountForecast(g *gin.RouterGroup, d Dependencies) {
	h := &controllers.ForecastController{Store: d.Store, Now: d.Now}
	g.GET("", h.ForecastAll)
	g.GET("/:itemId", h.ForecastItem)
}

func mountReorder(g *gin.RouterGroup, d Dependencies) {
	h := &controllers.ReorderController{Store: d.Store, Logger: d.Logger, Now: d.Now}
	authed := requireAuth(d)

	g.GET("", h.ListReorders)
	g.POST("", authed, h.CreateReorder)
	g.GET("/suggestions", h.Suggestions)
	g.PUT("/:id/status", authed, h.UpdateStatus)
	g.PUT("/items/:id/threshold", authed, h.UpdateThreshold)
}

func mountAnalytics(g *gin.RouterGroup, d Dependencies) {
	h := &controllers.AnalyticsController{
		Store:    d.Store,
		Cache:    d.Cache,
		CacheTTL: d.Config.Cache.TTL,
		Logger:   d.Logger,
	}
	g.GET("/summary", h.Summary)
	g.GET("/movements", h.MonthlyMovements)
	g.GET("/top-items", h.TopItems)
	g.GET("/categories", h.Categories)
}
