package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog   stockCatalog
	Engine    stockMutator
	Ledger    ledgerReader
	Metrics   nethttp.Handler // nil = sin /metrics
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Todo /api requiere Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Catalog)
	stock.Get("/items", stockHandler.SearchItems)
	stock.Get("/lots", stockHandler.ListLots)
	stock.Get("/warehouses", stockHandler.ListWarehouses)
	stock.Get("/destinations", stockHandler.Destinations)

	// Bajas y movimientos: sólo admin o bodeguero
	mutationHandler := NewMutationHandler(deps.Engine, deps.Catalog)
	canMutate := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	stock.Post("/deductions", canMutate, mutationHandler.Deduct)
	stock.Post("/transfers", canMutate, mutationHandler.Transfer)

	ledger := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledger.Get("/", ledgerHandler.List)
	ledger.Get("/pdf", ledgerHandler.PDF)
}
