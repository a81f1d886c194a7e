package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vadimbarashkov/phishing-detector/internal/entity"
)

// URLColumn is the CSV header selecting the column to ingest.
const URLColumn = "url"

// ParseURLColumn reads a CSV stream with a header row and returns the values
// of the column named exactly "url". A missing column yields an empty slice.
// Rows too short to hold the column are skipped.
func ParseURLColumn(r io.Reader) ([]string, error) {
	const op = "usecase.ParseURLColumn"

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%s: failed to read header: %w: %w", op, entity.ErrMalformedCSV, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := -1
	for i, name := range header {
		if name == URLColumn {
			col = i
			break
		}
	}

	urls := []string{}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read row: %w: %w", op, entity.ErrMalformedCSV, err)
		}

		if col < 0 || col >= len(row) {
			continue
		}
		urls = append(urls, row[col])
	}

	return urls, nil
}
