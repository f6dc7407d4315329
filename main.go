package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"RetailPOS/app/api"
	"RetailPOS/app/config"
	"RetailPOS/app/database"
	"RetailPOS/app/metrics"
	"RetailPOS/app/models"
	"RetailPOS/app/services"
	"RetailPOS/app/websocket"

	"github.com/joho/godotenv"
)

// App holds every long-running component of the server
type App struct {
	cfg                    *config.AppConfig
	LoggerService          *services.LoggerService
	Store                  *services.Store
	Serial                 *services.Serial
	Metrics                *metrics.Metrics
	WSServer               *websocket.Server
	GoogleSheetsService    *services.GoogleSheetsService
	ReportSchedulerService *services.ReportSchedulerService
	APIServer              *api.Server
}

// startup wires listeners and starts background services
func (a *App) startup() {
	log := a.LoggerService

	a.WSServer.Start()
	if a.cfg.Server.AnnounceMDNS {
		port, err := strconv.Atoi(a.cfg.Server.Port)
		if err == nil {
			err = a.WSServer.Announce(a.cfg.Business.Name, port)
		}
		if err != nil {
			log.LogWarning("mDNS announcement failed", err.Error())
		}
	}

	// Listeners run inside the store call, so they must not reach back into Serial
	_ = a.Serial.Do(func(store *services.Store) error {
		a.Metrics.Observe(store)
		store.OnChange(a.WSServer.BroadcastChange)
		store.OnSale(func(sale models.Sale) {
			a.WSServer.BroadcastSale(sale)
		})
		return nil
	})

	if a.ReportSchedulerService != nil {
		log.LogInfo("Starting Google Sheets report scheduler")
		if err := a.ReportSchedulerService.Start(); err != nil {
			log.LogWarning("Report scheduler start error", err.Error())
		}
	}

	go func() {
		defer log.RecoverPanic()
		if err := a.APIServer.Start(":" + a.cfg.Server.Port); err != nil {
			log.LogError("HTTP server error", err)
		}
	}()
}

// shutdown stops everything in reverse order and closes the database
func (a *App) shutdown() {
	log := a.LoggerService
	log.LogInfo("Application closing")

	if err := a.APIServer.Stop(); err != nil {
		log.LogWarning("HTTP server shutdown error", err.Error())
	}

	if a.GoogleSheetsService != nil {
		log.LogInfo("Sending final report to Google Sheets")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := a.GoogleSheetsService.SyncNow(ctx); err != nil {
			log.LogWarning("Failed to send final report to Google Sheets", err.Error())
		}
		cancel()
	}

	if a.ReportSchedulerService != nil {
		log.LogInfo("Stopping report scheduler")
		a.ReportSchedulerService.Stop()
	}

	log.LogInfo("Stopping WebSocket server")
	a.WSServer.Stop()

	if err := a.Serial.Do(func(store *services.Store) error { return store.Close() }); err != nil {
		log.LogError("Error closing database", err)
	} else {
		log.LogInfo("Database connection closed successfully")
	}
	log.LogInfo("Application shutdown complete")
}

func main() {
	// Load environment variables from .env file in project root (for development)
	envErr := godotenv.Load(".env")

	cfg, err := config.LoadOrCreate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "CRITICAL: could not load config:", err)
		os.Exit(1)
	}

	logDir := cfg.Logging.Dir
	if logDir == "" {
		logDir = "logs"
	}
	if logDir, err = config.ResolvePath(logDir); err != nil {
		fmt.Fprintln(os.Stderr, "CRITICAL: could not resolve log directory:", err)
		os.Exit(1)
	}
	loggerService := services.NewLoggerService(logDir, cfg.Logging.Level)
	defer loggerService.Close()

	// Recover from any panic and log it
	defer func() {
		if r := recover(); r != nil {
			loggerService.LogPanic(r)
			os.Exit(1)
		}
	}()

	loggerService.LogInfo("Application starting", "Retail POS server")
	if envErr != nil {
		loggerService.LogWarning(".env file not found, using config.json and environment")
	}
	if cfg.Logging.KeepDays > 0 {
		if err := loggerService.CleanOldLogs(cfg.Logging.KeepDays); err != nil {
			loggerService.LogWarning("Could not clean old logs", err.Error())
		}
	}

	zlog := loggerService.Zap()

	kv, err := database.Open(cfg.Database, zlog)
	if err != nil {
		loggerService.LogError("Failed to open database", err)
		os.Exit(1)
	}
	port := database.NewPort(kv, zlog)
	if err := database.SeedInitialData(port, cfg.Business); err != nil {
		loggerService.LogError("Failed to seed initial data", err)
		os.Exit(1)
	}

	app := &App{cfg: cfg, LoggerService: loggerService}
	app.Store = services.NewStore(port, zlog, services.StoreOptions{
		StrictStock:   cfg.Checkout.StrictStock,
		AccrueLoyalty: cfg.Checkout.AccrueLoyalty,
	})
	app.Serial = services.NewSerial(app.Store)
	app.Metrics = metrics.New()
	app.WSServer = websocket.NewServer(zlog)

	if cfg.Sheets.Enabled {
		app.GoogleSheetsService = services.NewGoogleSheetsService(cfg.Sheets, app.Serial, zlog)
		app.ReportSchedulerService = services.NewReportSchedulerService(
			app.GoogleSheetsService,
			cfg.Sheets.SyncMode,
			cfg.Sheets.SyncTime,
			time.Duration(cfg.Sheets.IntervalMinutes)*time.Minute,
			zlog,
		)
	}

	app.APIServer = api.NewServer(api.Options{
		Serial:  app.Serial,
		Auth:    cfg.Auth,
		Hub:     app.WSServer,
		Metrics: app.Metrics,
		Sheets:  app.GoogleSheetsService,
		Log:     zlog,
	})

	app.startup()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	loggerService.LogInfo("Shutdown signal received", sig.String())

	app.shutdown()
}
