package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/p-perotti/gobrewery-sub000/internal/application/auth"
	ledgerapp "github.com/p-perotti/gobrewery-sub000/internal/application/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/application/usecase"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	SizeUC    *usecase.SizeUseCase
	LedgerUC  *ledgerapp.UseCase
	ReportUC  *ledgerapp.ReportUseCase
	AuthUC    *auth.UseCase
	JWTSecret string
}

// Router registra las rutas de la API. Los dos libros (stock e inventario)
// comparten handlers: el kind queda fijado por el grupo de rutas.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: escritura solo admin, lectura para todos los roles
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(entity.RoleAdmin), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleAdmin), productHandler.Update)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	sizes := protected.Group("/sizes")
	sizeHandler := NewSizeHandler(deps.SizeUC)
	sizes.Post("/", RequireRole(entity.RoleAdmin), sizeHandler.Create)
	sizes.Put("/:id", RequireRole(entity.RoleAdmin), sizeHandler.Update)
	sizes.Get("/", sizeHandler.List)
	sizes.Get("/:id", sizeHandler.GetByID)

	// Libros de movimientos: mismas rutas bajo /stock y /inventory
	ledgerHandler := NewLedgerHandler(deps.LedgerUC, deps.ReportUC)
	reportHandler := NewReportHandler(deps.ReportUC)

	registerLedgerRoutes(protected.Group("/stock"), entity.LedgerKindStock, ledgerHandler, reportHandler)
	registerLedgerRoutes(protected.Group("/inventory"), entity.LedgerKindInventory, ledgerHandler, reportHandler)
}

// registerLedgerRoutes monta las rutas de un libro con su kind fijado.
// Registrar y cancelar movimientos exige rol de bodega o admin; las consultas
// de saldos y reportes están abiertas a cualquier usuario autenticado.
func registerLedgerRoutes(g fiber.Router, kind string, lh *LedgerHandler, rh *ReportHandler) {
	writer := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	g.Post("/movements", writer, lh.RecordMovement(kind))
	g.Get("/movements", lh.ListMovements(kind))
	g.Post("/movements/:id/cancel", writer, lh.CancelMovement)

	g.Get("/balances", rh.CurrentBalances(kind))
	g.Get("/balances/as-of", rh.BalanceAsOf(kind))
	g.Get("/reports/period", rh.PeriodReport(kind))
	g.Get("/availability", rh.Availability(kind))
}
