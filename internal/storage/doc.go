// Package storage provides flat-table persistence for event records.
//
// The full record set lives in a single spreadsheet file, one row per record,
// with the column headers "Event Name, Date, Venue, City, Category, URL,
// Status, Last Updated". The file format is picked by extension: .xlsx
// (default, via excelize) or .csv. Saves are atomic (temp file then rename),
// and a sidecar lock file enforces a single writer across processes.
package storage
