package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pfrederiksen/event-discovery/internal/event"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []event.Record {
	return []event.Record{
		{
			Name:        "Sunburn Arena",
			Date:        "2025-01-01",
			Venue:       event.UnknownVenue,
			City:        "mumbai",
			Category:    "Music",
			URL:         "https://in.bookmyshow.com/events/sunburn-arena/ET001",
			Status:      event.StatusExpired,
			LastUpdated: "2025-06-01 10:00:00",
		},
		{
			Name:        "Stand-up, Live",
			Date:        "2099-01-01",
			Venue:       "NCPA \"Tata\" Theatre",
			City:        "mumbai",
			Category:    "Comedy",
			URL:         "https://in.bookmyshow.com/events/standup-live/ET002",
			Status:      event.StatusActive,
			LastUpdated: "2025-06-01 10:00:00",
		},
	}
}

func TestTableStore_RoundTrip(t *testing.T) {
	for _, ext := range []string{".xlsx", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			store, err := Open(filepath.Join(t.TempDir(), "events_data"+ext))
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			want := sampleRecords()
			if err := store.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if len(got) != len(want) {
				t.Fatalf("Load() returned %d records, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestTableStore_LoadMissingFile(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "nested", "dir", "events_data.xlsx"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Errorf("Load() should not create the store file")
	}
}

func TestTableStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		contents string
		wantMsg  string
	}{
		{
			name:     "Garbage xlsx",
			file:     "events.xlsx",
			contents: "this is not a zip archive",
			wantMsg:  "opening workbook",
		},
		{
			name:     "Empty csv",
			file:     "events.csv",
			contents: "",
			wantMsg:  "missing header row",
		},
		{
			name:     "Missing column",
			file:     "events.csv",
			contents: "Event Name,Date,Venue,City,Category,Status,Last Updated\nA,2025-01-01,TBD,mumbai,Music,Active,2025-06-01 10:00:00\n",
			wantMsg:  `missing column "URL"`,
		},
		{
			name:     "Ragged csv",
			file:     "events.csv",
			contents: strings.Join(Columns, ",") + "\nA,2025-01-01\n",
			wantMsg:  "parsing csv",
		},
		{
			name: "Duplicate url",
			file: "events.csv",
			contents: strings.Join(Columns, ",") + "\n" +
				"A,2025-01-01,TBD,mumbai,Music,https://x.test/a,Active,2025-06-01 10:00:00\n" +
				"B,2025-01-02,TBD,mumbai,Music,https://x.test/a,Active,2025-06-01 10:00:00\n",
			wantMsg: "row 3: duplicate URL",
		},
		{
			name: "Empty url",
			file: "events.csv",
			contents: strings.Join(Columns, ",") + "\n" +
				"A,2025-01-01,TBD,mumbai,Music,,Active,2025-06-01 10:00:00\n",
			wantMsg: "row 2: empty URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.contents), 0644); err != nil {
				t.Fatal(err)
			}

			store, err := Open(path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			_, err = store.Load()
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("Load() error = %v, want ErrCorrupt", err)
			}
			var corrupt *CorruptError
			if !errors.As(err, &corrupt) || corrupt.Path != path {
				t.Errorf("Load() error = %#v, want *CorruptError for %s", err, path)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Load() error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}

			// The unreadable file must survive
			data, _ := os.ReadFile(path)
			if string(data) != tt.contents {
				t.Error("corrupt file was modified")
			}
		})
	}
}

func TestTableStore_LoadReordersColumnsAndSkipsBlankRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	contents := "URL,Status,Extra,Last Updated,Category,City,Venue,Date,Event Name\n" +
		"https://x.test/a,Active,ignored,2025-06-01 10:00:00,Music,mumbai,TBD,2025-01-01,A\n" +
		",,,,,,,,\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	store, _ := Open(path)
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Load() returned %d records, want 1", len(got))
	}
	if got[0].Name != "A" || got[0].Date != "2025-01-01" || got[0].URL != "https://x.test/a" {
		t.Errorf("Load() = %+v", got[0])
	}
}

func TestTableStore_XLSXKeepsDatesAsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.xlsx")
	store, _ := Open(path)
	if err := store.Save(sampleRecords()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close() // nolint:errcheck

	if f.GetSheetName(0) != SheetName {
		t.Errorf("sheet = %q, want %q", f.GetSheetName(0), SheetName)
	}

	cellType, err := f.GetCellType(SheetName, "B2")
	if err != nil {
		t.Fatal(err)
	}
	if cellType == excelize.CellTypeDate || cellType == excelize.CellTypeNumber {
		t.Errorf("date cell stored as %v, want a string cell", cellType)
	}

	v, _ := f.GetCellValue(SheetName, "B2")
	if v != "2025-01-01" {
		t.Errorf("B2 = %q, want 2025-01-01", v)
	}
}

func TestTableStore_LoadForeignWorkbook(t *testing.T) {
	// A pandas-style workbook: default "Sheet1", all eight headers
	path := filepath.Join(t.TempDir(), "events_data.xlsx")
	f := excelize.NewFile()
	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellStr("Sheet1", cell, h) // nolint:errcheck
	}
	row := []string{"A", "2025-01-01", "TBD", "mumbai", "Music", "https://x.test/a", "Active", "2025-06-01 10:00:00"}
	for i, v := range row {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellStr("Sheet1", cell, v) // nolint:errcheck
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close() // nolint:errcheck

	store, _ := Open(path)
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://x.test/a" {
		t.Errorf("Load() = %+v", got)
	}
}

func TestTableStore_SaveOverwritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := Open(filepath.Join(dir, "events.csv"))

	if err := store.Save(sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(sampleRecords()[:1]); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("Load() returned %d records, want 1 after overwrite", len(got))
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestTableStore_SaveFailureKeepsPreviousFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	store, _ := Open(filepath.Join(dir, "events.csv"))
	if err := store.Save(sampleRecords()); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(store.Path())

	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0755) // nolint:errcheck

	err := store.Save(sampleRecords()[:1])
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("Save() error = %v, want ErrWrite", err)
	}

	after, _ := os.ReadFile(store.Path())
	if !bytes.Equal(before, after) {
		t.Error("failed save changed the previous snapshot")
	}
}

func TestTableStore_Lock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.xlsx")
	first, _ := Open(path)
	second, _ := Open(path)

	unlock, err := first.Lock()
	if err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if _, err := second.Lock(); !errors.Is(err, ErrLocked) {
		t.Errorf("second Lock() error = %v, want ErrLocked", err)
	}

	unlock()

	unlock2, err := second.Lock()
	if err != nil {
		t.Fatalf("Lock() after unlock error = %v", err)
	}
	unlock2()
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "events.json")); err == nil {
		t.Error("Open() with .json should fail")
	}
}

func TestLookup(t *testing.T) {
	records := sampleRecords()

	got, ok := Lookup(records, records[1].URL)
	if !ok || got.Name != records[1].Name {
		t.Errorf("Lookup() = %+v, %v", got, ok)
	}
	if _, ok := Lookup(records, "https://x.test/missing"); ok {
		t.Error("Lookup() found a missing url")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != strings.Join(Columns, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], `"Stand-up, Live"`) {
		t.Errorf("comma field not quoted: %q", lines[2])
	}
}
