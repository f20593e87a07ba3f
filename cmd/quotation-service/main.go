package main

import (
	"fmt"
	"os"

	"github.com/antstech/quotation-service/internal/auth"
	"github.com/antstech/quotation-service/internal/config"
	"github.com/antstech/quotation-service/internal/db"
	"github.com/antstech/quotation-service/internal/excel"
	httphandler "github.com/antstech/quotation-service/internal/http"
	"github.com/antstech/quotation-service/internal/http/middleware"
	"github.com/antstech/quotation-service/internal/logger"
	"github.com/antstech/quotation-service/internal/pdf"
	"github.com/antstech/quotation-service/internal/repository"
	"github.com/antstech/quotation-service/internal/service"
	"github.com/antstech/quotation-service/internal/sheet"
	sheetpg "github.com/antstech/quotation-service/internal/sheet/postgres"
	"github.com/antstech/quotation-service/internal/sheet/xlsx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	var workbook sheet.Workbook
	switch cfg.Sheets.Backend {
	case config.BackendWorkbook:
		workbook, err = xlsx.Open(cfg.Sheets.WorkbookPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open workbook")
		}
	case config.BackendPostgres:
		database, err := db.New(cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect database")
		}
		workbook = sheetpg.New(database)
	default:
		log.Fatal().Str("backend", cfg.Sheets.Backend).Msg("unknown sheets backend")
	}

	quoteRepo := repository.NewQuotationRepository(workbook)
	quoteService := service.NewQuoteService(quoteRepo, pdf.NewGenerator(), excel.NewGenerator(), cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(quoteService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("backend", cfg.Sheets.Backend).Msg("starting quotation service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
