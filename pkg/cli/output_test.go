package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Headers: []string{"state", "complaint_count"},
		Rows: [][]string{
			{"NY", "120"},
			{"VT", "15"},
		},
	}
}

func TestTextFormatterAlignsTable(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "state") {
		t.Errorf("header line = %q", lines[0])
	}
	// Short values pad to the header width.
	if !strings.HasPrefix(lines[1], "NY    ") {
		t.Errorf("row line = %q, want padded state column", lines[1])
	}
}

func TestTextFormatterScalar(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, "done"); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}
	if buf.String() != "done\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	data := map[string]int{"rows": 2}
	if err := (&JSONFormatter{Indent: true}).FormatTo(buf, data); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if decoded["rows"] != 2 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestCSVFormatterRoundTrips(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&CSVFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}

	rows, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("reading produced CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "state" || rows[1][0] != "NY" {
		t.Errorf("rows = %v", rows)
	}
}

func TestCSVFormatterRejectsNonTable(t *testing.T) {
	if err := (&CSVFormatter{}).FormatTo(&bytes.Buffer{}, "scalar"); err == nil {
		t.Error("expected error for non-tabular data")
	}
}

func TestNewFormatter(t *testing.T) {
	cases := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"unknown", "*cli.TextFormatter"},
	}
	for _, tc := range cases {
		if got := fmt.Sprintf("%T", NewFormatter(tc.format)); got != tc.want {
			t.Errorf("NewFormatter(%q) = %s, want %s", tc.format, got, tc.want)
		}
	}
}
