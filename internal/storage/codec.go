package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/event-discovery/internal/event"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written to .xlsx stores
const SheetName = "Events"

// codec reads and writes raw table rows (header first)
type codec interface {
	decode(r io.Reader) ([][]string, error)
	encode(w io.Writer, rows [][]string) error
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return xlsxCodec{}, nil
	case ".csv":
		return csvCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported store format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}

type xlsxCodec struct{}

// decode reads the first worksheet, so files written by other tools still load
func (xlsxCodec) decode(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close() // nolint:errcheck

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// encode writes every cell as a string cell so date-like text stays text
func (xlsxCodec) encode(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(SheetName, cell, v); err != nil {
				return fmt.Errorf("setting %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("encoding workbook: %w", err)
	}
	return nil
}

type csvCodec struct{}

func (csvCodec) decode(r io.Reader) ([][]string, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return rows, nil
}

func (csvCodec) encode(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("encoding csv: %w", err)
	}
	return nil
}

// WriteCSV writes records as a CSV table with the store's header row
func WriteCSV(w io.Writer, records []event.Record) error {
	return csvCodec{}.encode(w, toRows(records))
}
