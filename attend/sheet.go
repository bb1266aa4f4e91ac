package attend

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RowUpdate stages new timestamp/presence values for one remote row.
type RowUpdate struct {
	// Row is the zero-based index of the row within the fetched range.
	Row int
	// Values are the new timestamp and presence cells, in that order.
	Values []string
}

// RowStore is the remote tabular backend: read every row, write cell updates
// in one batch. An error from ApplyUpdates fails the whole batch.
type RowStore interface {
	FetchRows(ctx context.Context) ([][]string, error)
	ApplyUpdates(ctx context.Context, updates []RowUpdate) error
}

// SheetStore marks attendance in one worksheet of a Google spreadsheet.
// Rows live in <sheet>!A:E: column A holds the tag id, D the first-seen
// time, E the presence flag.
type SheetStore struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetStore(ctx context.Context, credentialsFile string, spreadsheetID string, sheetName string) (*SheetStore, error) {
	if spreadsheetID == "" || sheetName == "" {
		return nil, fmt.Errorf("spreadsheet id and sheet name are required")
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	return &SheetStore{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

func (s *SheetStore) FetchRows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, fmt.Sprintf("%s!A:E", s.sheetName)).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *SheetStore) ApplyUpdates(ctx context.Context, updates []RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		values := make([]interface{}, 0, len(u.Values))
		for _, v := range u.Values {
			values = append(values, v)
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!D%d:E%d", s.sheetName, u.Row+1, u.Row+1),
			Values: [][]interface{}{values},
		})
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	return err
}
