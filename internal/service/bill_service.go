package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/locvowork/billgen/internal/config"
	"github.com/locvowork/billgen/internal/domain"
	"github.com/locvowork/billgen/internal/logger"
	"github.com/locvowork/billgen/internal/statement"
	"github.com/locvowork/billgen/pkg/xltemplate"
)

// BillService turns a statement into one filled template per customer.
type BillService struct {
	settings config.Settings
	now      func() time.Time
}

// NewBillService creates a new BillService instance
func NewBillService(s config.Settings) *BillService {
	return &BillService{settings: s, now: time.Now}
}

// Summary describes one generation run.
type Summary struct {
	Statement string
	Reference time.Time
	Records   int
	Files     []string
}

// Bill is a record paired with the output file name it renders to.
type Bill struct {
	Record *domain.Record
	Name   string
}

// ==================== Statement ====================

// ReadRecords resolves the reference date and reads the qualifying records
// from sheet.
func (bs *BillService) ReadRecords(ctx context.Context, sheet domain.Sheet) ([]*domain.Record, time.Time, error) {
	ref, err := statement.ReferenceDate(sheet, bs.settings, bs.now())
	if err != nil {
		return nil, time.Time{}, err
	}

	reader, err := statement.NewReader(bs.settings)
	if err != nil {
		return nil, time.Time{}, err
	}

	records, err := reader.Read(ctx, sheet, ref)
	if err != nil {
		return nil, time.Time{}, err
	}
	return records, ref, nil
}

// Plan reads the statement from the statement folder and returns the bills
// it would produce without touching the template or output folder.
func (bs *BillService) Plan(ctx context.Context) ([]Bill, *Summary, error) {
	path, err := statement.FindStatement(bs.settings.StatementFolder)
	if err != nil {
		return nil, nil, err
	}
	logger.InfoLog(ctx, "Reading statement %s", path)

	sheet, err := statement.OpenSheet(path)
	if err != nil {
		return nil, nil, err
	}
	defer sheet.Close()

	records, ref, err := bs.ReadRecords(ctx, sheet)
	if err != nil {
		return nil, nil, err
	}

	bills := bs.Bills(ctx, records)
	summary := &Summary{Statement: path, Reference: ref, Records: len(records)}
	for _, b := range bills {
		summary.Files = append(summary.Files, b.Name)
	}
	return bills, summary, nil
}

// Bills names each record's output file. Two records that resolve to the
// same name keep both bills: the later one gets its statement row appended.
func (bs *BillService) Bills(ctx context.Context, records []*domain.Record) []Bill {
	bills := make([]Bill, 0, len(records))
	used := make(map[string]bool, len(records))

	for _, rec := range records {
		name := xltemplate.FileName(bs.settings.OutputFilenameFormat, rec.Map())
		key := strings.ToLower(name)
		if used[key] {
			ext := filepath.Ext(name)
			unique := fmt.Sprintf("%s (строка %d)%s", strings.TrimSuffix(name, ext), rec.Row(), ext)
			logger.WarnLog(ctx, "row %d: output name %q is already used, writing %q", rec.Row(), name, unique)
			name = unique
			key = strings.ToLower(name)
		}
		used[key] = true
		bills = append(bills, Bill{Record: rec, Name: name})
	}
	return bills
}

// ==================== Generation ====================

// Generate reads the statement, fills the template once per record and
// writes the bills to the output folder. The first failure stops the run.
func (bs *BillService) Generate(ctx context.Context) (*Summary, error) {
	bills, summary, err := bs.Plan(ctx)
	if err != nil {
		return nil, err
	}

	tmpl, err := xltemplate.Load(bs.settings.TemplatePath())
	if err != nil {
		return nil, err
	}
	bs.checkTokens(ctx, tmpl)

	if err := os.MkdirAll(bs.settings.OutputFolder, 0o755); err != nil {
		return nil, fmt.Errorf("creating output folder: %w", err)
	}

	for _, b := range bills {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(bs.settings.OutputFolder, b.Name)
		if err := tmpl.ExportToFile(path, b.Record.Map()); err != nil {
			return nil, fmt.Errorf("writing bill for row %d: %w", b.Record.Row(), err)
		}
		logger.DebugLog(ctx, "row %d: wrote %s", b.Record.Row(), path)
	}

	logger.InfoLog(ctx, "Wrote %d bills to %s", len(bills), bs.settings.OutputFolder)
	return summary, nil
}

// WriteArchive generates bills from an uploaded statement and template and
// streams them to w as a zip archive. ext is the statement's file extension.
func (bs *BillService) WriteArchive(ctx context.Context, w io.Writer, stmt io.Reader, ext string, template io.Reader) (*Summary, error) {
	sheet, err := statement.ReadSheet(stmt, ext)
	if err != nil {
		return nil, err
	}
	defer sheet.Close()

	records, ref, err := bs.ReadRecords(ctx, sheet)
	if err != nil {
		return nil, err
	}

	tmpl, err := xltemplate.LoadFromReader(template)
	if err != nil {
		return nil, err
	}
	bs.checkTokens(ctx, tmpl)

	summary := &Summary{Reference: ref, Records: len(records)}
	zw := zip.NewWriter(w)
	for _, b := range bs.Bills(ctx, records) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     b.Name,
			Method:   zip.Deflate,
			Modified: bs.now(),
		})
		if err != nil {
			return nil, fmt.Errorf("adding %s to archive: %w", b.Name, err)
		}
		if err := tmpl.Export(entry, b.Record.Map()); err != nil {
			return nil, fmt.Errorf("writing bill for row %d: %w", b.Record.Row(), err)
		}
		summary.Files = append(summary.Files, b.Name)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	return summary, nil
}

// checkTokens warns about template placeholders no record can fill, which
// usually means a typo in the template.
func (bs *BillService) checkTokens(ctx context.Context, tmpl *xltemplate.Template) {
	known := map[string]bool{
		domain.TokenNumber:      true,
		domain.TokenName:        true,
		domain.TokenAccount:     true,
		domain.TokenMonth:       true,
		domain.TokenYear:        true,
		domain.TokenDebt:        true,
		domain.TokenDebtRubles:  true,
		domain.TokenDebtKopecks: true,
	}
	for i := 1; i <= domain.MaxMeters; i++ {
		known[domain.MeterLastToken(i)] = true
		known[domain.MeterPaidToken(i)] = true
	}

	for _, tok := range tmpl.Tokens() {
		if !known[tok] {
			logger.WarnLog(ctx, "template placeholder %s is not recognized and will be left as is", tok)
		}
	}
}
