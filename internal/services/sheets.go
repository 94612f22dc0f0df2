package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// SheetsSink appends orders as rows to the first worksheet of a Google spreadsheet
type SheetsSink struct {
	service       *sheets.Service
	spreadsheetID string
	sheetTitle    string
}

// NewSheetsSink authenticates with service account credentials (JSON) and opens
// the spreadsheet. When spreadsheetID is empty the spreadsheet is looked up by name in Drive.
func NewSheetsSink(ctx context.Context, credsJSON, spreadsheetName, spreadsheetID string) (*SheetsSink, error) {
	if strings.TrimSpace(credsJSON) == "" {
		return nil, fmt.Errorf("GOOGLE_CREDS_JSON not set")
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(credsJSON),
		sheets.SpreadsheetsScope, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}

	if spreadsheetID == "" {
		driveSvc, err := drive.NewService(ctx, option.WithCredentials(creds))
		if err != nil {
			return nil, fmt.Errorf("create drive client: %w", err)
		}
		spreadsheetID, err = findSpreadsheet(ctx, driveSvc, spreadsheetName)
		if err != nil {
			return nil, err
		}
	}

	return OpenSheetsSink(ctx, svc, spreadsheetID)
}

// OpenSheetsSink uses an existing Sheets client and resolves the first worksheet's title
func OpenSheetsSink(ctx context.Context, svc *sheets.Service, spreadsheetID string) (*SheetsSink, error) {
	ss, err := svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no worksheets", spreadsheetID)
	}

	title := ss.Sheets[0].Properties.Title
	log.Printf("✅ Connected to Google Sheets: %s (%s)", spreadsheetID, title)

	return &SheetsSink{
		service:       svc,
		spreadsheetID: spreadsheetID,
		sheetTitle:    title,
	}, nil
}

// findSpreadsheet returns the id of the first spreadsheet named name visible to the service account
func findSpreadsheet(ctx context.Context, svc *drive.Service, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		strings.ReplaceAll(name, "'", "\\'"), spreadsheetMimeType)

	res, err := svc.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("search spreadsheet %q: %w", name, err)
	}
	if len(res.Files) == 0 {
		return "", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name)
	}
	return res.Files[0].Id, nil
}

// Append adds one row after the last row of the worksheet. Values are written
// RAW so customer text is never parsed as a number, date or formula.
func (s *SheetsSink) Append(ctx context.Context, record models.OrderRecord) error {
	vr := &sheets.ValueRange{
		Values: [][]interface{}{record.Row()},
	}

	_, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.appendRange(), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

func (s *SheetsSink) Name() string {
	return "google-sheets"
}

func (s *SheetsSink) appendRange() string {
	return fmt.Sprintf("'%s'!A1", strings.ReplaceAll(s.sheetTitle, "'", "''"))
}
