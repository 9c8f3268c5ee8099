package loaders

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/chivis/survey-relay/internal/config"
	"github.com/chivis/survey-relay/internal/types"
	"github.com/chivis/survey-relay/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// RowAppender appends a single row to a spreadsheet range.
type RowAppender interface {
	AppendRow(ctx context.Context, row []interface{}) (interface{}, error)
}

// SinkFactory builds an authenticated RowAppender from the relay config.
type SinkFactory func(ctx context.Context, cfg *config.Config) (RowAppender, error)

// SheetsClient appends rows to one Google spreadsheet using a service account.
type SheetsClient struct {
	service       *sheets.Service
	spreadsheetID string
	sheetRange    string
}

// NewSheetsClient authenticates with the service account credentials in cfg,
// scoped to spreadsheet data. A private key that does not parse fails here;
// the token itself is fetched on the first append.
func NewSheetsClient(ctx context.Context, cfg *config.Config) (RowAppender, error) {
	if err := checkPrivateKey([]byte(cfg.PrivateKey)); err != nil {
		return nil, &types.SinkError{Op: "authenticate", Err: err}
	}

	jwtConfig := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, &types.SinkError{Op: "connect", Err: err}
	}

	return &SheetsClient{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.SheetRange,
	}, nil
}

// checkPrivateKey accepts the PEM or DER RSA keys that jwt.Config signs with.
func checkPrivateKey(key []byte) error {
	if block, _ := pem.Decode(key); block != nil {
		key = block.Bytes
	}
	if _, err := x509.ParsePKCS8PrivateKey(key); err == nil {
		return nil
	}
	if _, err := x509.ParsePKCS1PrivateKey(key); err == nil {
		return nil
	}
	return errors.New("private key is not a PKCS#8 or PKCS#1 key")
}

// AppendRow appends row below the last row of the configured range. Values
// are stored as given (RAW), never parsed as formulas.
func (s *SheetsClient) AppendRow(ctx context.Context, row []interface{}) (interface{}, error) {
	body := &sheets.ValueRange{Values: [][]interface{}{row}}

	resp, err := s.service.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetRange, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		utils.Zlog.Error("Error appending to sheet",
			zap.String("range", s.sheetRange),
			zap.Error(err))
		return nil, &types.SinkError{Op: "append", Err: err}
	}

	if resp.Updates != nil {
		utils.Zlog.Debug("Row appended",
			zap.String("updatedRange", resp.Updates.UpdatedRange),
			zap.Int64("updatedCells", resp.Updates.UpdatedCells))
	}
	return resp, nil
}
