// Package importer reads bank statements into transactions. CSV covers the
// common export format of most banks; OFX/QFX covers direct downloads.
// Imported transactions start unassigned and are deduplicated by hash.
package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

// csvRow mirrors one line of a bank CSV export.
type csvRow struct {
	Date         string `csv:"date"`
	Description  string `csv:"description"`
	Counterparty string `csv:"counterparty"`
	Amount       string `csv:"amount"`
	Account      string `csv:"account"`
}

// csvDateLayouts are tried in order when parsing the date column.
var csvDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	time.RFC3339,
}

// ParseCSV reads a CSV bank export into transactions. Rows that cannot be
// parsed are skipped and logged; a file yielding no valid rows is a
// validation error.
func ParseCSV(reader io.Reader, defaultAccount string) ([]model.Transaction, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, common.ValidationError("failed to parse CSV: %v", err)
	}

	var transactions []model.Transaction
	for i, row := range rows {
		txn, err := convertCSVRow(row, defaultAccount)
		if err != nil {
			slog.Warn("Skipping unparseable CSV row",
				"line", i+2, // 1-based, after the header
				"error", err)
			continue
		}
		transactions = append(transactions, *txn)
	}

	if len(transactions) == 0 {
		return nil, common.ValidationError("no valid transactions in CSV input")
	}

	slog.Info("Parsed CSV statement",
		"rows", len(rows),
		"transactions", len(transactions))

	return transactions, nil
}

func convertCSVRow(row csvRow, defaultAccount string) (*model.Transaction, error) {
	date, err := parseCSVDate(row.Date)
	if err != nil {
		return nil, err
	}

	// Banks disagree on decimal separators; normalize comma to dot before
	// exact decimal parsing, then carry the amount as float like the rest
	// of the pipeline.
	amountStr := strings.ReplaceAll(strings.TrimSpace(row.Amount), ",", ".")
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", row.Amount, err)
	}

	description := strings.TrimSpace(row.Description)
	if description == "" {
		return nil, fmt.Errorf("missing description")
	}

	account := strings.TrimSpace(row.Account)
	if account == "" {
		account = defaultAccount
	}
	if account == "" {
		return nil, fmt.Errorf("missing account")
	}

	txn := model.Transaction{
		Date:         date,
		Description:  description,
		Counterparty: strings.TrimSpace(row.Counterparty),
		Amount:       amount.InexactFloat64(),
		AccountID:    account,
	}
	txn.Hash = txn.GenerateHash()
	txn.ID = txn.Hash[:16]

	return &txn, nil
}

func parseCSVDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
