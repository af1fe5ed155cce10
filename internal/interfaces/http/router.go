package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmsanzl/custodia-api/internal/application/catalog"
	"github.com/jmsanzl/custodia-api/internal/application/delivery"
	"github.com/jmsanzl/custodia-api/internal/application/deposits"
	"github.com/jmsanzl/custodia-api/internal/application/traceability"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	UnitUC      *traceability.UnitUseCase
	LotUC       *traceability.LotUseCase
	DepositUC   *deposits.UseCase
	NoteUC      *delivery.NoteUseCase
	ArticleUC   *catalog.ArticleUseCase
	ClientUC    *catalog.ClientUseCase
	WarehouseUC *catalog.WarehouseUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Toda la API es protegida (Bearer Token).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Unidades trazables
	units := api.Group("/stock-units")
	unitHandler := NewStockUnitHandler(deps.UnitUC)
	units.Post("/", unitHandler.Create)
	units.Get("/", unitHandler.List)
	units.Get("/aging-report", unitHandler.AgingReport)
	units.Get("/:id", unitHandler.GetByID)
	units.Post("/:id/move", unitHandler.Move)
	units.Post("/:id/reserve", unitHandler.Reserve)
	units.Post("/:id/release", unitHandler.Release)
	units.Post("/:id/ship", unitHandler.Ship)
	units.Post("/:id/damage", unitHandler.Damage)

	// Lotes
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC)
	lots.Post("/", lotHandler.Create)
	lots.Get("/", lotHandler.List)
	lots.Get("/expiring", lotHandler.Expiring)
	lots.Get("/expired", lotHandler.Expired)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Post("/:id/expo", lotHandler.CreateExpo)
	lots.Post("/:id/recompute", lotHandler.Recompute)

	// Depósitos
	depositsGroup := api.Group("/deposits")
	depositHandler := NewDepositHandler(deps.DepositUC)
	depositsGroup.Post("/", depositHandler.Create)
	depositsGroup.Get("/", depositHandler.List)
	depositsGroup.Get("/:id", depositHandler.GetByID)
	depositsGroup.Put("/:id", depositHandler.Update)
	depositsGroup.Post("/:id/items", depositHandler.AddItem)
	depositsGroup.Delete("/:id/items/:itemId", depositHandler.RemoveItem)
	depositsGroup.Post("/:id/close", depositHandler.Close)
	depositsGroup.Post("/:id/cancel", depositHandler.Cancel)
	depositsGroup.Patch("/:id/billing-status", depositHandler.SetBillingStatus)

	// Albaranes
	notes := api.Group("/delivery-notes")
	noteHandler := NewDeliveryNoteHandler(deps.NoteUC)
	notes.Post("/", noteHandler.Create)
	notes.Get("/", noteHandler.List)
	notes.Get("/stats", noteHandler.Stats)
	notes.Get("/:id", noteHandler.GetByID)
	notes.Put("/:id", noteHandler.Update)
	notes.Post("/:id/complete", noteHandler.Complete)
	notes.Post("/:id/cancel", noteHandler.Cancel)

	// Catálogos
	articles := api.Group("/articles")
	articleHandler := NewArticleHandler(deps.ArticleUC)
	articles.Post("/", articleHandler.Create)
	articles.Get("/", articleHandler.List)
	articles.Get("/:id", articleHandler.GetByID)
	articles.Post("/:id/deactivate", articleHandler.Deactivate)

	clients := api.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
}
