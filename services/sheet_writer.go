package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/SamuelLeutner/notion-acads/logger"
)

// GoogleSheetsWriter implements acads.ReportWriter on a single spreadsheet.
type GoogleSheetsWriter struct {
	sheetsService    *sheets.Service
	spreadsheetID    string
	retryMaxAttempts int
	retryDelay       time.Duration
}

// NewGoogleSheetsWriter authenticates with a service account credentials file.
func NewGoogleSheetsWriter(ctx context.Context, spreadsheetID, credentialsFilePath string, retryMaxAttempts int, retryDelay time.Duration) (*GoogleSheetsWriter, error) {
	credentialsJSON, err := os.ReadFile(credentialsFilePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read credentials file")
	}

	jwt, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, errors.Wrap(err, "failed to configure JWT from credentials")
	}

	return NewGoogleSheetsWriterWithOptions(ctx, spreadsheetID, retryMaxAttempts, retryDelay, option.WithHTTPClient(jwt.Client(ctx)))
}

func NewGoogleSheetsWriterWithOptions(ctx context.Context, spreadsheetID string, retryMaxAttempts int, retryDelay time.Duration, opts ...option.ClientOption) (*GoogleSheetsWriter, error) {
	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Google Sheets API client")
	}

	return &GoogleSheetsWriter{
		sheetsService:    sheetsService,
		spreadsheetID:    spreadsheetID,
		retryMaxAttempts: retryMaxAttempts,
		retryDelay:       retryDelay,
	}, nil
}

func (w *GoogleSheetsWriter) Clear(ctx context.Context, sheetName string) error {
	clearRange := fmt.Sprintf("'%s'!A1:ZZ", sheetName)
	logger.Debug().Str("range", clearRange).Msg("Sheets: clearing range")

	err := w.executeSheetsCall(ctx, func() error {
		_, err := w.sheetsService.Spreadsheets.Values.Clear(w.spreadsheetID, clearRange, &sheets.ClearValuesRequest{}).Context(ctx).Do()
		return err
	}, "clear "+clearRange)
	if err != nil {
		return errors.Wrapf(err, "failed to clear range '%s' in spreadsheet '%s'", clearRange, w.spreadsheetID)
	}
	return nil
}

func (w *GoogleSheetsWriter) SetHeaders(ctx context.Context, sheetName string, headers []string) error {
	writeRange := fmt.Sprintf("'%s'!A1", sheetName)
	row := make([]interface{}, 0, len(headers))
	for _, h := range headers {
		row = append(row, h)
	}

	err := w.executeSheetsCall(ctx, func() error {
		_, err := w.sheetsService.Spreadsheets.Values.Update(w.spreadsheetID, writeRange, &sheets.ValueRange{Values: [][]interface{}{row}}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		return err
	}, "set headers on "+sheetName)
	if err != nil {
		return errors.Wrapf(err, "failed to set headers at %s in spreadsheet '%s'", writeRange, w.spreadsheetID)
	}

	logger.Debug().Str("sheet", sheetName).Int("columns", len(headers)).Msg("Sheets: headers set")
	return nil
}

func (w *GoogleSheetsWriter) AppendRows(ctx context.Context, sheetName string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	appendRange := fmt.Sprintf("'%s'", sheetName)
	err := w.executeSheetsCall(ctx, func() error {
		_, err := w.sheetsService.Spreadsheets.Values.Append(w.spreadsheetID, appendRange, &sheets.ValueRange{Values: rows}).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	}, "append to "+sheetName)
	if err != nil {
		return errors.Wrapf(err, "failed to append %d rows to sheet '%s'", len(rows), sheetName)
	}

	logger.Debug().Str("sheet", sheetName).Int("rows", len(rows)).Msg("Sheets: rows appended")
	return nil
}

func (w *GoogleSheetsWriter) EnsureSheetExists(ctx context.Context, sheetName string) error {
	var spreadsheet *sheets.Spreadsheet
	err := w.executeSheetsCall(ctx, func() error {
		var err error
		spreadsheet, err = w.sheetsService.Spreadsheets.Get(w.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		return err
	}, "get spreadsheet")
	if err != nil {
		return errors.Wrapf(err, "failed to get spreadsheet details for '%s'", w.spreadsheetID)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == sheetName {
			return nil
		}
	}

	logger.Info().Str("sheet", sheetName).Msg("Sheets: creating missing sheet")
	batch := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheetName}},
		}},
	}
	err = w.executeSheetsCall(ctx, func() error {
		_, err := w.sheetsService.Spreadsheets.BatchUpdate(w.spreadsheetID, batch).Context(ctx).Do()
		return err
	}, fmt.Sprintf("create sheet '%s'", sheetName))
	if err != nil {
		return errors.Wrapf(err, "failed to create sheet '%s' in spreadsheet '%s'", sheetName, w.spreadsheetID)
	}
	return nil
}

func isRetryableSheetsError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}

	switch {
	case apiErr.Code >= 500 && apiErr.Code < 600:
		return true
	case apiErr.Code == 429:
		return true
	case apiErr.Code == 403 && strings.Contains(strings.ToLower(apiErr.Message), "ratelimitexceeded"):
		return true
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "rateLimitExceeded" || item.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}

func (w *GoogleSheetsWriter) executeSheetsCall(ctx context.Context, callFunc func() error, operationDesc string) error {
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "operation '%s' cancelled", operationDesc)
		default:
		}

		err := callFunc()
		if err == nil {
			return nil
		}
		if !isRetryableSheetsError(err) || attempt >= w.retryMaxAttempts {
			return errors.Wrapf(err, "sheets operation '%s' failed after %d attempts", operationDesc, attempt+1)
		}

		delay := w.retryDelay * time.Duration(1<<attempt)
		logger.Warn().
			Err(err).
			Str("operation", operationDesc).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Sheets call failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "operation '%s' cancelled during retry wait", operationDesc)
		}
	}
}
