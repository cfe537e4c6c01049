package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("csv input is empty")
	// ErrMalformedCSV covers CSV syntax errors and rows whose column count differs from the header.
	ErrMalformedCSV = errors.New("malformed csv")
	// ErrUndecodable is returned when the bytes are neither UTF-8 nor Windows-1252.
	ErrUndecodable = errors.New("undecodable csv input")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a CSV export held in memory: one header row and the data rows below it.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV reads an entire export. A UTF-8 byte order mark is dropped and input
// that is not valid UTF-8 is decoded as Windows-1252, the encoding Excel and
// ServiceNow use on Windows. Every row must have as many cells as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	data, err := decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedCSV, err)
	}

	table := &Table{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func decode(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	return out, nil
}
