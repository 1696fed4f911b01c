package router

import (
	authsvc "captable-backend/internal/application/auth"
	equitysvc "captable-backend/internal/application/equity"
	optsvc "captable-backend/internal/application/options"
	planssvc "captable-backend/internal/application/plans"
	reportsvc "captable-backend/internal/application/reports"
	schedsvc "captable-backend/internal/application/schedules"
	scsvc "captable-backend/internal/application/shareclasses"
	shsvc "captable-backend/internal/application/shareholders"
	"captable-backend/internal/config"
	"captable-backend/internal/infrastructure/database"
	authhandler "captable-backend/internal/interfaces/handlers/auth"
	healthhandler "captable-backend/internal/interfaces/handlers/health"
	holdhandler "captable-backend/internal/interfaces/handlers/holdings"
	opthandler "captable-backend/internal/interfaces/handlers/options"
	planhandler "captable-backend/internal/interfaces/handlers/plans"
	reporthandler "captable-backend/internal/interfaces/handlers/reports"
	schedhandler "captable-backend/internal/interfaces/handlers/schedules"
	schandler "captable-backend/internal/interfaces/handlers/shareclasses"
	shhandler "captable-backend/internal/interfaces/handlers/shareholders"
	txhandler "captable-backend/internal/interfaces/handlers/transactions"
	"captable-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and routes.
// DB and Redis handles are returned so main can verify connectivity.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(redisOpts)
	}

	healthHandlers := &healthhandler.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	if db == nil {
		// No database, nothing else to mount (tests build their own app).
		return app, db, rdb, nil
	}

	cache := reportsvc.NewCache(rdb, cfg.ReportCacheTTL)

	authService := &authsvc.Service{DB: db, JWTSecret: cfg.JWTSecret, TokenLifetime: cfg.TokenLifetime}
	shareholderService := &shsvc.Service{DB: db}
	shareClassService := &scsvc.Service{DB: db}
	equityService := &equitysvc.Service{DB: db}
	scheduleService := &schedsvc.Service{DB: db}
	planService := &planssvc.Service{DB: db}
	optionService := &optsvc.Service{DB: db}
	reportService := &reportsvc.Service{
		DB:           db,
		Shareholders: shareholderService,
		ShareClasses: shareClassService,
		Cache:        cache,
	}

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)
	requireAdmin := middleware.RequireAdmin()

	authHandlers := &authhandler.Handlers{Service: authService}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", requireAuth, authHandlers.Me)
	authGroup.Patch("/password", requireAuth, authHandlers.ChangePassword)

	shHandlers := &shhandler.Handlers{Service: shareholderService}
	shGroup := app.Group("/api/v1/shareholders", requireAuth)
	shGroup.Post("/", requireAdmin, shHandlers.Create)
	shGroup.Get("/", shHandlers.List)
	shGroup.Get("/summary", shHandlers.Summary)
	shGroup.Get("/:id", shHandlers.Get)
	shGroup.Put("/:id", requireAdmin, shHandlers.Update)
	shGroup.Delete("/:id", requireAdmin, shHandlers.Delete)

	scHandlers := &schandler.Handlers{Service: shareClassService}
	scGroup := app.Group("/api/v1/share-classes", requireAuth)
	scGroup.Post("/", requireAdmin, scHandlers.Create)
	scGroup.Get("/", scHandlers.List)
	scGroup.Get("/:id", scHandlers.Get)
	scGroup.Put("/:id", requireAdmin, scHandlers.Update)
	scGroup.Delete("/:id", requireAdmin, scHandlers.Delete)

	holdHandlers := &holdhandler.Handlers{Service: equityService, Cache: cache}
	holdGroup := app.Group("/api/v1/holdings", requireAuth)
	holdGroup.Post("/", requireAdmin, holdHandlers.Create)
	holdGroup.Get("/", holdHandlers.List)
	holdGroup.Get("/:id", holdHandlers.Get)
	holdGroup.Put("/:id", requireAdmin, holdHandlers.Update)
	holdGroup.Delete("/:id", requireAdmin, holdHandlers.Delete)

	txHandlers := &txhandler.Handlers{Service: equityService}
	app.Get("/api/v1/transactions", requireAuth, txHandlers.List)

	schedHandlers := &schedhandler.Handlers{Service: scheduleService}
	schedGroup := app.Group("/api/v1/vesting-schedules", requireAuth)
	schedGroup.Post("/", requireAdmin, schedHandlers.Create)
	schedGroup.Get("/", schedHandlers.List)
	schedGroup.Get("/:id", schedHandlers.Get)
	schedGroup.Get("/:id/usage", schedHandlers.Usage)
	schedGroup.Put("/:id", requireAdmin, schedHandlers.Update)
	schedGroup.Delete("/:id", requireAdmin, schedHandlers.Delete)

	planHandlers := &planhandler.Handlers{Service: planService}
	planGroup := app.Group("/api/v1/option-plans", requireAuth)
	planGroup.Post("/", requireAdmin, planHandlers.Create)
	planGroup.Get("/", planHandlers.List)
	planGroup.Get("/:id", planHandlers.Get)
	planGroup.Put("/:id", requireAdmin, planHandlers.Update)
	planGroup.Patch("/:id/resize", requireAdmin, planHandlers.Resize)
	planGroup.Delete("/:id", requireAdmin, planHandlers.Delete)

	optHandlers := &opthandler.Handlers{Service: optionService, Cache: cache}
	optGroup := app.Group("/api/v1/options", requireAuth)
	optGroup.Post("/", requireAdmin, optHandlers.Create)
	optGroup.Get("/", optHandlers.List)
	optGroup.Get("/:id", optHandlers.Get)
	optGroup.Get("/:id/vesting", optHandlers.Vesting)
	optGroup.Get("/:id/exercises", optHandlers.Exercises)
	optGroup.Post("/:id/exercise", optHandlers.Exercise)
	optGroup.Post("/:id/cancel", requireAdmin, optHandlers.Cancel)
	optGroup.Patch("/:id", requireAdmin, optHandlers.Update)

	reportHandlers := &reporthandler.Handlers{Service: reportService}
	reportGroup := app.Group("/api/v1/reports", requireAuth)
	reportGroup.Get("/cap-table", reportHandlers.CapTable)
	reportGroup.Get("/cap-table/export", reportHandlers.CapTableCSV)
	reportGroup.Get("/option-grants", reportHandlers.OptionGrants)
	reportGroup.Get("/vesting", reportHandlers.UpcomingVesting)

	return app, db, rdb, nil
}
