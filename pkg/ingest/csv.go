// Package ingest parses and validates recipient CSV files into the ordered
// recipient list the campaign engine consumes. The expected layout is a
// header row `address,amount` followed by one row per recipient; amounts are
// human-readable decimals converted to the token's smallest denomination
// using the campaign's decimal count.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sablier-labs/merkle-api-go/pkg/campaign"
	"github.com/sablier-labs/merkle-api-go/pkg/chain"
)

// RowError is one validation failure, addressed by its 1-based CSV row number
// (the header is row 1) so the caller can fix the file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result carries the parsed recipients together with every validation error
// found. Recipients is only usable when Errors is empty.
type Result struct {
	Recipients  []campaign.Recipient
	TotalAmount uint64
	Errors      []RowError
}

// ParseCSV reads and validates a recipient CSV. Row-level problems (bad
// address, bad amount, duplicate address, missing column) are collected into
// Result.Errors rather than failing fast, so one pass reports everything
// wrong with the file. An unreadable stream or a bad header returns early.
func ParseCSV(r io.Reader, codec chain.Codec, decimals int) (*Result, error) {
	if decimals < 0 || decimals > 18 {
		return nil, fmt.Errorf("decimals must be between 0 and 18, got %d", decimals)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Result{Errors: []RowError{{Row: 1, Message: "empty csv file"}}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if rowErr := validateHeader(header); rowErr != nil {
		return &Result{Errors: []RowError{*rowErr}}, nil
	}

	result := &Result{}
	seen := make(map[string]int)

	for rowIndex := 0; ; rowIndex++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", rowIndex+2, err)
		}

		rowNumber := rowIndex + 2 // 1-based, after the header
		if len(record) < 2 {
			result.Errors = append(result.Errors, RowError{Row: rowNumber, Message: "insufficient columns"})
			continue
		}

		addrField := strings.TrimSpace(record[0])
		amountField := strings.TrimSpace(record[1])

		rowOK := true

		addr, err := codec.NormalizeAddress(addrField)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNumber, Message: err.Error()})
			rowOK = false
		} else if firstRow, dup := seen[string(addr)]; dup {
			result.Errors = append(result.Errors, RowError{
				Row:     rowNumber,
				Message: fmt.Sprintf("duplicate address, first seen at row %d", firstRow),
			})
			rowOK = false
		} else {
			seen[string(addr)] = rowNumber
		}

		amount, err := parseAmount(amountField, decimals)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNumber, Message: err.Error()})
			rowOK = false
		}

		if !rowOK {
			continue
		}

		result.Recipients = append(result.Recipients, campaign.Recipient{
			Address: addrField,
			Amount:  amount,
		})
		result.TotalAmount += amount
	}

	return result, nil
}

func validateHeader(header []string) *RowError {
	if len(header) < 2 {
		return &RowError{Row: 1, Message: "csv header must contain `address` and `amount` columns"}
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), "address") {
		return &RowError{Row: 1, Message: "csv header invalid: first column must be `address`"}
	}
	if !strings.EqualFold(strings.TrimSpace(header[1]), "amount") {
		return &RowError{Row: 1, Message: "csv header invalid: second column must be `amount`"}
	}
	return nil
}

// parseAmount converts a positive decimal string into the smallest
// denomination by scaling with 10^decimals. The fractional part may not carry
// more digits than the campaign's decimal count, and zero is rejected.
func parseAmount(s string, decimals int) (uint64, error) {
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || !isDigits(whole) {
		return 0, fmt.Errorf("amount %q is not a positive decimal number", s)
	}
	if hasFrac && (frac == "" || !isDigits(frac)) {
		return 0, fmt.Errorf("amount %q is not a positive decimal number", s)
	}
	if len(frac) > decimals {
		return 0, fmt.Errorf("amount %q has %d decimal places, at most %d allowed", s, len(frac), decimals)
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	value, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q overflows the smallest denomination: %w", s, err)
	}
	if value == 0 {
		return 0, fmt.Errorf("amount cannot be 0")
	}
	return value, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
