package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"RetailPOS/app/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrSheetsDisabled is returned when syncing while the integration is off
var ErrSheetsDisabled = errors.New("google sheets integration is disabled")

var reportHeaders = []interface{}{
	"date",
	"total_sales",
	"total_tax",
	"orders",
	"items_sold",
	"average_ticket",
	"by_payment",
	"products",
}

// SyncStatus describes the outcome of the last report sync
type SyncStatus struct {
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus string     `json:"last_sync_status,omitempty"` // "success" or "error"
	LastSyncError  string     `json:"last_sync_error,omitempty"`
	TotalSyncs     int        `json:"total_syncs"`
}

// GoogleSheetsService pushes daily report rows to a spreadsheet, one row per date
type GoogleSheetsService struct {
	cfg    config.SheetsConfig
	serial *Serial
	log    *zap.Logger

	// newService builds the API client; tests point it at a fake endpoint
	newService func(ctx context.Context) (*sheets.Service, error)

	mu     sync.Mutex
	status SyncStatus
}

// NewGoogleSheetsService creates a sheets client authenticated with the
// service account credentials in cfg
func NewGoogleSheetsService(cfg config.SheetsConfig, serial *Serial, log *zap.Logger) *GoogleSheetsService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &GoogleSheetsService{cfg: cfg, serial: serial, log: log}
	s.newService = s.serviceFromCredentials
	return s
}

// Config returns the sheets settings
func (s *GoogleSheetsService) Config() config.SheetsConfig {
	return s.cfg
}

// Status returns the outcome of the last sync
func (s *GoogleSheetsService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *GoogleSheetsService) serviceFromCredentials(ctx context.Context) (*sheets.Service, error) {
	if s.cfg.Credentials == "" || s.cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("missing credentials or spreadsheet ID")
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(s.cfg.Credentials), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// TestConnection checks that the spreadsheet is reachable
func (s *GoogleSheetsService) TestConnection(ctx context.Context) error {
	srv, err := s.newService(ctx)
	if err != nil {
		return err
	}
	if _, err := srv.Spreadsheets.Get(s.cfg.SpreadsheetID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to access spreadsheet: %w", err)
	}
	return nil
}

// SendReport writes the report row, replacing the row for the same date if
// one exists
func (s *GoogleSheetsService) SendReport(ctx context.Context, report ReportData) error {
	if !s.cfg.Enabled {
		return ErrSheetsDisabled
	}

	srv, err := s.newService(ctx)
	if err != nil {
		return err
	}

	if err := s.ensureHeaders(ctx, srv); err != nil {
		return fmt.Errorf("failed to ensure headers: %w", err)
	}

	paymentsJSON, err := json.Marshal(report.ByPayment)
	if err != nil {
		return fmt.Errorf("failed to marshal payments: %w", err)
	}
	productsJSON, err := json.Marshal(report.Products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	row := []interface{}{
		report.Date,
		report.TotalSales,
		report.TotalTax,
		report.Orders,
		report.ItemsSold,
		report.AverageTicket,
		string(paymentsJSON),
		string(productsJSON),
	}

	rowIndex, err := s.findExistingRowIndex(ctx, srv, report.Date)
	if err != nil {
		return fmt.Errorf("failed to check existing row: %w", err)
	}

	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}

	if rowIndex > 0 {
		sheetRange := fmt.Sprintf("%s!A%d:H%d", s.cfg.SheetName, rowIndex, rowIndex)
		_, err = srv.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, sheetRange, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("unable to update data: %w", err)
		}
	} else {
		sheetRange := fmt.Sprintf("%s!A:H", s.cfg.SheetName)
		_, err = srv.Spreadsheets.Values.Append(s.cfg.SpreadsheetID, sheetRange, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("unable to append data: %w", err)
		}
	}

	return nil
}

// findExistingRowIndex finds the 1-based row for a date, or -1
func (s *GoogleSheetsService) findExistingRowIndex(ctx context.Context, srv *sheets.Service, date string) (int, error) {
	sheetRange := fmt.Sprintf("%s!A:A", s.cfg.SheetName)
	resp, err := srv.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return -1, err
	}

	for i, row := range resp.Values {
		if len(row) > 0 {
			if v, ok := row[0].(string); ok && v == date {
				return i + 1, nil
			}
		}
	}
	return -1, nil
}

// ensureHeaders writes the header row when the sheet has none
func (s *GoogleSheetsService) ensureHeaders(ctx context.Context, srv *sheets.Service) error {
	sheetRange := fmt.Sprintf("%s!A1:H1", s.cfg.SheetName)
	resp, err := srv.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return err
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) < len(reportHeaders) {
		valueRange := &sheets.ValueRange{Values: [][]interface{}{reportHeaders}}
		_, err := srv.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, sheetRange, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		return err
	}
	return nil
}

// SyncDay builds the report for day from the store and sends it, recording
// the outcome in Status
func (s *GoogleSheetsService) SyncDay(ctx context.Context, day time.Time) error {
	report := Read(s.serial, func(store *Store) ReportData {
		return store.DailyReport(day)
	})

	err := s.SendReport(ctx, report)

	s.mu.Lock()
	now := time.Now()
	s.status.LastSyncAt = &now
	if err != nil {
		s.status.LastSyncStatus = "error"
		s.status.LastSyncError = err.Error()
	} else {
		s.status.LastSyncStatus = "success"
		s.status.LastSyncError = ""
		s.status.TotalSyncs++
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Error("Google Sheets sync failed", zap.String("date", report.Date), zap.Error(err))
		return err
	}
	s.log.Info("Google Sheets sync completed",
		zap.String("date", report.Date),
		zap.Int("orders", report.Orders),
		zap.Float64("total", report.TotalSales))
	return nil
}

// SyncNow sends today's report
func (s *GoogleSheetsService) SyncNow(ctx context.Context) error {
	return s.SyncDay(ctx, time.Now())
}
