package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/centavoapp/centavo/internal/advisor"
	"github.com/centavoapp/centavo/internal/ledger"
)

// Stats summarizes one import run.
type Stats struct {
	Imported    int
	Categorized int
	Failed      int
}

// Importer reads statement files and records their rows as journal entries.
// Categorization is best-effort: a row that cannot be classified lands
// uncategorized rather than failing the import.
type Importer struct {
	ledger   *ledger.Service
	advisor  *advisor.Service
	progress io.Writer
}

// New creates an importer. advisorSvc may be nil to skip categorization;
// progress may be nil to suppress the progress bar.
func New(ledgerSvc *ledger.Service, advisorSvc *advisor.Service, progress io.Writer) *Importer {
	return &Importer{
		ledger:   ledgerSvc,
		advisor:  advisorSvc,
		progress: progress,
	}
}

// ImportFile parses the file by extension (.ofx/.qfx or .csv) and records its
// rows against the wallet.
func (imp *Importer) ImportFile(ctx context.Context, userID, walletID int64, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close statement file", "path", path, "error", cerr)
		}
	}()

	var rows []Row
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		rows, err = NewOFXParser().Parse(f)
	case ".csv":
		rows, err = NewCSVParser().Parse(f)
	default:
		return nil, fmt.Errorf("unsupported statement format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return imp.Import(ctx, userID, walletID, rows)
}

// Import records the rows as journal entries against the wallet, one ledger
// write per row so each moves the balance atomically.
func (imp *Importer) Import(ctx context.Context, userID, walletID int64, rows []Row) (*Stats, error) {
	stats := &Stats{}
	if len(rows) == 0 {
		return stats, nil
	}

	categoryIDs := imp.categorize(ctx, userID, rows)

	bar := imp.newProgressBar(len(rows))

	for i, row := range rows {
		categoryID := categoryIDs[i]
		_, err := imp.ledger.CreateTransaction(ctx, ledger.TransactionParams{
			UserID:      userID,
			WalletID:    walletID,
			CategoryID:  categoryID,
			Type:        row.Type,
			Amount:      row.Amount,
			Description: row.Description,
			Date:        row.Date,
		})
		if err != nil {
			stats.Failed++
			slog.Warn("failed to import statement row",
				"description", row.Description,
				"error", err)
		} else {
			stats.Imported++
			if categoryID != 0 {
				stats.Categorized++
			}
		}
		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("failed to update progress bar", "error", err)
			}
		}
	}

	slog.Info("import finished",
		"imported", stats.Imported,
		"categorized", stats.Categorized,
		"failed", stats.Failed)

	return stats, nil
}

func (imp *Importer) categorize(ctx context.Context, userID int64, rows []Row) []int64 {
	ids := make([]int64, len(rows))
	if imp.advisor == nil {
		return ids
	}

	descriptions := make([]string, len(rows))
	for i, row := range rows {
		descriptions[i] = row.Description
	}

	got, err := imp.advisor.CategorizeDescriptions(ctx, userID, descriptions)
	if err != nil {
		slog.Warn("categorization failed, importing uncategorized", "error", err)
		return ids
	}
	copy(ids, got)
	return ids
}

func (imp *Importer) newProgressBar(total int) *progressbar.ProgressBar {
	if imp.progress == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(imp.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(imp.progress); err != nil {
				slog.Warn("failed to write newline after progress bar", "error", err)
			}
		}),
	)
}
