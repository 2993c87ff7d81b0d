package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/estatedesk/backend/internal/infrastructure/config"

	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
)

// Client talks to a single Google Spreadsheet. One Client is created per
// sheet tab so the sync layer can treat sellers and buyers as independent
// tabular sources sharing one rate limit.
type Client struct {
	service         *sheets.Service
	spreadsheetID   string
	sheetName       string
	sheetID         int64
	credentialsFile string
	headers         []string
	limiter         *rate.Limiter
	timeout         time.Duration
	retryCount      int
	retryBackoff    time.Duration
	logger          *zap.Logger
}

var _ syncdomain.TabularSource = (*Client)(nil)

// NewClient creates a sheets client for one tab of the configured
// spreadsheet. The limiter is shared across clients so all tabs stay
// inside the per-minute API quota together.
func NewClient(cfg config.SheetsConfig, sheetName string, limiter *rate.Limiter, logger *zap.Logger) *Client {
	return &Client{
		spreadsheetID:   cfg.SpreadsheetID,
		sheetName:       sheetName,
		sheetID:         -1,
		credentialsFile: cfg.CredentialsFile,
		limiter:         limiter,
		timeout:         cfg.RequestTimeout,
		retryCount:      cfg.RetryCount,
		retryBackoff:    cfg.RetryBackoff,
		logger:          logger,
	}
}

// NewLimiter builds the shared API rate limiter from configuration.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// Authenticate establishes the API session and resolves the numeric sheet
// ID and header row. It must be called before any read or write.
func (c *Client) Authenticate(ctx context.Context) error {
	credentials, err := os.ReadFile(c.credentialsFile)
	if err != nil {
		return fmt.Errorf("%w: read credentials: %v", syncdomain.ErrAuthFailed, err)
	}

	service, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentials),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", syncdomain.ErrAuthFailed, err)
	}
	c.service = service

	if err := c.resolveSheetID(ctx); err != nil {
		return err
	}
	if err := c.loadHeaders(ctx); err != nil {
		return err
	}

	c.logger.Info("sheets source ready",
		zap.String("sheet", c.sheetName),
		zap.Int("columns", len(c.headers)),
	)
	return nil
}

func (c *Client) resolveSheetID(ctx context.Context) error {
	var meta *sheets.Spreadsheet
	err := c.call(ctx, func(callCtx context.Context) error {
		var err error
		meta, err = c.service.Spreadsheets.Get(c.spreadsheetID).
			Fields("sheets.properties").Context(callCtx).Do()
		return err
	})
	if err != nil {
		return err
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetName {
			c.sheetID = sheet.Properties.SheetId
			return nil
		}
	}
	return syncdomain.NewValidationError(fmt.Sprintf("sheet %q not found in spreadsheet", c.sheetName))
}

func (c *Client) loadHeaders(ctx context.Context) error {
	var resp *sheets.ValueRange
	err := c.call(ctx, func(callCtx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.Values.
			Get(c.spreadsheetID, fmt.Sprintf("%s!1:1", c.sheetName)).
			Context(callCtx).Do()
		return err
	})
	if err != nil {
		return err
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return syncdomain.NewDataShapeError(fmt.Sprintf("sheet %q has no header row", c.sheetName))
	}

	headers := make([]string, 0, len(resp.Values[0]))
	for _, cell := range resp.Values[0] {
		headers = append(headers, fmt.Sprint(cell))
	}
	c.headers = headers
	return nil
}

// Headers returns the header row captured at Authenticate time, refetching
// if the session has not loaded it yet.
func (c *Client) Headers(ctx context.Context) ([]string, error) {
	if len(c.headers) == 0 {
		if err := c.loadHeaders(ctx); err != nil {
			return nil, err
		}
	}
	return c.headers, nil
}

// ReadAll returns every data row below the header as column-name keyed
// maps. Row order matches the sheet.
func (c *Client) ReadAll(ctx context.Context) ([]syncdomain.Row, error) {
	var resp *sheets.ValueRange
	err := c.call(ctx, func(callCtx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.Values.
			Get(c.spreadsheetID, c.sheetName).
			Context(callCtx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Values) <= 1 {
		return nil, nil
	}

	rows := make([]syncdomain.Row, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		row := make(syncdomain.Row, len(c.headers))
		for i, header := range c.headers {
			if i < len(raw) {
				row[header] = fmt.Sprint(raw[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRow appends values in header order after the last data row.
func (c *Client) AppendRow(ctx context.Context, row syncdomain.Row) error {
	values := make([]interface{}, len(c.headers))
	for i, header := range c.headers {
		values[i] = row[header]
	}
	return c.call(ctx, func(callCtx context.Context) error {
		_, err := c.service.Spreadsheets.Values.
			Append(c.spreadsheetID, c.sheetName, &sheets.ValueRange{Values: [][]interface{}{values}}).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(callCtx).Do()
		return err
	})
}

// UpdateRow overwrites the given 1-indexed row with values in header order.
func (c *Client) UpdateRow(ctx context.Context, rowIndex int, row syncdomain.Row) error {
	if rowIndex < 2 {
		return syncdomain.NewValidationError(fmt.Sprintf("row index %d is not a data row", rowIndex))
	}
	values := make([]interface{}, len(c.headers))
	for i, header := range c.headers {
		values[i] = row[header]
	}
	rangeRef := fmt.Sprintf("%s!A%d", c.sheetName, rowIndex)
	return c.call(ctx, func(callCtx context.Context) error {
		_, err := c.service.Spreadsheets.Values.
			Update(c.spreadsheetID, rangeRef, &sheets.ValueRange{Values: [][]interface{}{values}}).
			ValueInputOption("USER_ENTERED").
			Context(callCtx).Do()
		return err
	})
}

// DeleteRow removes the given 1-indexed row entirely, shifting later rows up.
func (c *Client) DeleteRow(ctx context.Context, rowIndex int) error {
	if rowIndex < 2 {
		return syncdomain.NewValidationError(fmt.Sprintf("row index %d is not a data row", rowIndex))
	}
	request := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    c.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex - 1),
					EndIndex:   int64(rowIndex),
				},
			},
		}},
	}
	return c.call(ctx, func(callCtx context.Context) error {
		_, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, request).
			Context(callCtx).Do()
		return err
	})
}

// FindRowByColumn returns the 1-indexed row whose value in the named column
// equals value, scanning top to bottom. The header row is never matched.
func (c *Client) FindRowByColumn(ctx context.Context, column, value string) (int, bool, error) {
	rows, err := c.ReadAll(ctx)
	if err != nil {
		return 0, false, err
	}
	for i, row := range rows {
		if row.Get(column) == value {
			return i + 2, true, nil
		}
	}
	return 0, false, nil
}

// call runs one API operation through the shared limiter with a per-call
// timeout and a bounded retry on transient failures.
func (c *Client) call(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryBackoff):
			}
			c.logger.Warn("retrying sheets call",
				zap.String("sheet", c.sheetName),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return classify(err)
		}
		lastErr = err
	}
	return classify(lastErr)
}

// isRetryable reports whether an API error is worth one more attempt.
func isRetryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// classify maps API failures onto the sync error taxonomy.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return fmt.Errorf("%w: %v", syncdomain.ErrAuthFailed, err)
		case apiErr.Code == 429 || apiErr.Code >= 500:
			return fmt.Errorf("%w: %v", syncdomain.ErrTransientExternal, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", syncdomain.ErrTransientExternal, err)
	}
	return err
}
