package dashboard

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func testTable() *ResultTable {
	return &ResultTable{
		SurveyID:   1,
		SurveyName: "Service quality",
		Headers:    []string{"Respondent", "Score", "Completed At", "Favourite colour?"},
		Rows: [][]string{
			{"a@example.com", "0.8", "2026-01-01 10:00:00", "Red"},
			{"b@example.com", "", "2026-01-02 11:30:00", "Blue, Green"},
		},
	}
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{in: "", want: FormatCSV},
		{in: "csv", want: FormatCSV},
		{in: "xlsx", want: FormatXLSX},
		{in: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseExportFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseExportFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseExportFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testTable()); err != nil {
		t.Fatalf("WriteCSV() unexpected error: %v", err)
	}

	want := "Respondent,Score,Completed At,Favourite colour?\n" +
		"a@example.com,0.8,2026-01-01 10:00:00,Red\n" +
		"b@example.com,,2026-01-02 11:30:00,\"Blue, Green\"\n"
	if buf.String() != want {
		t.Fatalf("WriteCSV() output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, testTable()); err != nil {
		t.Fatalf("WriteXLSX() unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Results")
	if err != nil {
		t.Fatalf("failed to read Results sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 data rows", len(rows))
	}
	if !reflect.DeepEqual(rows[0], testTable().Headers) {
		t.Fatalf("header row = %v, want %v", rows[0], testTable().Headers)
	}
	if rows[1][0] != "a@example.com" || rows[2][3] != "Blue, Green" {
		t.Fatalf("data rows = %v", rows[1:])
	}
}
