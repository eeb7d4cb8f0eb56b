package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Farmacia-api/internal/application/auth"
	"github.com/jhoicas/Farmacia-api/internal/application/inventory"
	apptransfer "github.com/jhoicas/Farmacia-api/internal/application/transfer"
	"github.com/jhoicas/Farmacia-api/internal/application/usecase"
	"github.com/jhoicas/Farmacia-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	BranchUC   *usecase.BranchUseCase
	ProductUC  *usecase.ProductUseCase
	StockUC    *inventory.StockQueryUseCase
	WorkflowUC *apptransfer.WorkflowUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Branches (protegido; crear solo admin)
	branches := protected.Group("/branches")
	branchHandler := NewBranchHandler(deps.BranchUC)
	branches.Post("/", RequireRole(entity.RoleAdmin), branchHandler.Create)
	branches.Get("/", branchHandler.List)
	branches.Get("/:id", branchHandler.GetByID)

	// Products (protegido; crear solo admin)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(entity.RoleAdmin), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Stock (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stock.Get("/", stockHandler.Get)
	stock.Get("/sellable", stockHandler.Sellable)
	stock.Post("/expiry-sweep", RequireRole(entity.RoleAdmin), stockHandler.ExpirySweep)

	// Transfers (protegido). El despacho lo hace la sucursal origen; cada
	// verificación queda restringida al rol que la ejecuta físicamente.
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.WorkflowUC)
	transfers.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), transferHandler.Dispatch)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/:id/pdf", transferHandler.TransferNotePDF)
	transfers.Post("/:id/verify-keeper", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), transferHandler.VerifyKeeper)
	transfers.Post("/:id/verify-controller", RequireRole(entity.RoleAdmin, entity.RoleControlador), transferHandler.VerifyController)
}
