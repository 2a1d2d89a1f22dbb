package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/auth"
	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC     *usecase.CompanyUseCase
	StoreUC       *usecase.StoreUseCase
	CustomerUC    *usecase.CustomerUseCase
	PetUC         *usecase.PetUseCase
	ProductUC     *usecase.ProductUseCase
	InvoiceUC     *billing.InvoiceLifecycleUseCase
	InvoicePDFUC  *billing.InvoicePDFUseCase
	CreditNoteUC  *billing.CreditNoteUseCase
	TransactionUC *billing.TransactionUseCase
	ExportUC      *billing.ExportUseCase
	AuthUC        *auth.AuthUseCase
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Alta de empresa (público: es el primer paso del onboarding)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	api.Post("/companies", companyHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Empresa propia (protegido)
	protected.Get("/companies/me", companyHandler.GetOwn)
	protected.Put("/companies/me", RequireRole("owner"), companyHandler.Update)

	// Stores (protegido; gestión solo owner/manager)
	stores := protected.Group("/stores")
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores.Get("/", storeHandler.List)
	stores.Get("/:id", storeHandler.GetByID)
	stores.Post("/", RequireRole("owner", "manager"), storeHandler.Create)
	stores.Put("/:id", RequireRole("owner", "manager"), storeHandler.Update)
	stores.Delete("/:id", RequireRole("owner"), storeHandler.Deactivate)

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", RequireRole("owner", "manager"), customerHandler.Delete)

	// Pets (protegido)
	pets := protected.Group("/pets")
	petHandler := NewPetHandler(deps.PetUC)
	pets.Post("/", petHandler.Create)
	pets.Get("/", petHandler.List)
	pets.Get("/:id", petHandler.GetByID)
	pets.Put("/:id", petHandler.Update)
	pets.Delete("/:id", petHandler.Delete)

	// Products (protegido; gestión solo owner/manager)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole("owner", "manager"), productHandler.Create)
	products.Put("/:id", RequireRole("owner", "manager"), productHandler.Update)
	products.Delete("/:id", RequireRole("owner", "manager"), productHandler.Deactivate)

	// Invoices (protegido). La autorización por operación (quién emite, quién
	// anula) la deciden los casos de uso con los roles del usuario.
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.InvoicePDFUC)
	creditNoteHandler := NewCreditNoteHandler(deps.CreditNoteUC)
	transactionHandler := NewTransactionHandler(deps.TransactionUC)
	invoices.Post("/", invoiceHandler.CreateDraft)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/issue", invoiceHandler.Issue)
	invoices.Post("/:id/pay", invoiceHandler.MarkAsPaid)
	invoices.Post("/:id/void", invoiceHandler.Void)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)
	invoices.Get("/:id/credit-notes", creditNoteHandler.ListByInvoice)
	invoices.Get("/:id/transactions", transactionHandler.ListByInvoice)

	// Credit notes (protegido)
	creditNotes := protected.Group("/credit-notes")
	creditNotes.Post("/", creditNoteHandler.Create)
	creditNotes.Get("/:id", creditNoteHandler.GetByID)
	creditNotes.Post("/:id/issue", creditNoteHandler.Issue)

	// Transactions (protegido)
	transactions := protected.Group("/transactions")
	transactions.Post("/", transactionHandler.Create)
	transactions.Get("/:id", transactionHandler.GetByID)
	transactions.Post("/:id/pay", transactionHandler.MarkPaid)
	transactions.Post("/:id/refund", transactionHandler.Refund)

	// Exports financieros (protegido; el caso de uso exige accountant/owner)
	exports := protected.Group("/exports")
	exportHandler := NewExportHandler(deps.ExportUC)
	exports.Post("/", exportHandler.Create)
	exports.Get("/", exportHandler.List)
	exports.Get("/:id", exportHandler.GetByID)
}
