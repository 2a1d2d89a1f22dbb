package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pataspro/petshop-api/internal/application/auth"
	"github.com/pataspro/petshop-api/internal/application/billing"
	"github.com/pataspro/petshop-api/internal/application/usecase"
	infraexport "github.com/pataspro/petshop-api/internal/infrastructure/export"
	infrapdf "github.com/pataspro/petshop-api/internal/infrastructure/pdf"
	"github.com/pataspro/petshop-api/internal/infrastructure/postgres"
	httpRouter "github.com/pataspro/petshop-api/internal/interfaces/http"
	"github.com/pataspro/petshop-api/pkg/config"
	"github.com/pataspro/petshop-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios
	companyRepo := postgres.NewCompanyRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	petRepo := postgres.NewPetRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	creditNoteRepo := postgres.NewCreditNoteRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	exportRepo := postgres.NewFinancialExportRepository(pool)
	auditSink := postgres.NewAuditRepository(pool)

	// Numeración fiscal: contador por (empresa, tienda, año) en transacción
	// serializable.
	txRunner := postgres.NewTxRunner(pool)
	numberGen := postgres.NewNumberGenerator(txRunner)

	roleResolver := auth.NewRoleResolver(userRepo)

	// CRUD
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	storeUC := usecase.NewStoreUseCase(storeRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	petUC := usecase.NewPetUseCase(petRepo, customerRepo)
	productUC := usecase.NewProductUseCase(productRepo)

	// Facturación
	invoiceUC := billing.NewInvoiceLifecycleUseCase(
		invoiceRepo, companyRepo, storeRepo, customerRepo, productRepo,
		transactionRepo, numberGen, roleResolver, auditSink,
	)
	creditNoteUC := billing.NewCreditNoteUseCase(creditNoteRepo, invoiceRepo, roleResolver, auditSink)
	transactionUC := billing.NewTransactionUseCase(transactionRepo, invoiceRepo, storeRepo, roleResolver, auditSink)

	// Exports financieros: CSV/JSON/XML a disco local o spool SFTP
	var exportStorage billing.ExportStorage
	if cfg.Export.SFTPSpoolDir != "" && cfg.Export.SFTPBaseURL != "" {
		exportStorage, err = infraexport.NewSFTPDropStorage(cfg.Export.SFTPSpoolDir, cfg.Export.SFTPBaseURL)
	} else {
		exportStorage, err = infraexport.NewLocalStorage(cfg.Export.Dir)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de exports")
	}
	exportUC := billing.NewExportUseCase(
		exportRepo, invoiceRepo, transactionRepo, creditNoteRepo, companyRepo,
		[]billing.ExportWriter{
			infraexport.NewCSVWriter(),
			infraexport.NewJSONWriter(),
			infraexport.NewXMLWriter(),
		},
		exportStorage, roleResolver, auditSink,
	)

	// PDF: representación imprimible de facturas emitidas
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	invoicePDFUC := billing.NewInvoicePDFUseCase(invoiceRepo, companyRepo, customerRepo, pdfGenerator, roleResolver)

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PatasPro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:     companyUC,
		StoreUC:       storeUC,
		CustomerUC:    customerUC,
		PetUC:         petUC,
		ProductUC:     productUC,
		InvoiceUC:     invoiceUC,
		InvoicePDFUC:  invoicePDFUC,
		CreditNoteUC:  creditNoteUC,
		TransactionUC: transactionUC,
		ExportUC:      exportUC,
		AuthUC:        authUC,
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
