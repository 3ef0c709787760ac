package pipeline

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-parts/models"
)

func sampleRecords() []Record {
	scrapedAt := time.Date(2025, 11, 4, 13, 9, 13, 0, time.UTC)
	return []Record{
		{Product: models.CPU{Name: "AMD Ryzen 5 7600", Brand: "AMD", Price: 199.99}, ScrapedAt: scrapedAt},
		{Product: models.RAM{Name: "Corsair 16GB DDR4 3200MHz", Price: 42.5, Frequency: 3200, Brand: "Corsair", RAMType: "DDR4"}, ScrapedAt: scrapedAt},
	}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}

	if err := writer.Write(sampleRecords()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}
	if strings.Join(records[0], ",") != "category,name,brand,price,frequency,memory,ram_type,power,scraped_at" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	cpu := records[1]
	want := []string{"cpu", "AMD Ryzen 5 7600", "AMD", "199.99", "", "", "", "", "2025-11-04T13:09:13Z"}
	if strings.Join(cpu, "|") != strings.Join(want, "|") {
		t.Fatalf("cpu row = %q, want %q", cpu, want)
	}

	ram := records[2]
	if ram[0] != "ram" || ram[3] != "42.5" || ram[4] != "3200" || ram[6] != "DDR4" || ram[5] != "" {
		t.Fatalf("unexpected ram row: %q", ram)
	}
}

func TestJSONWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}

	if err := writer.Write(sampleRecords()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []map[string]any
	for scanner.Scan() {
		var decoded map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		lines = append(lines, decoded)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("json lines=%d, want 2", len(lines))
	}
	if lines[0]["category"] != "cpu" || lines[0]["name"] != "AMD Ryzen 5 7600" || lines[0]["price"] != 199.99 {
		t.Fatalf("unexpected cpu line: %v", lines[0])
	}
	if lines[1]["ram_type"] != "DDR4" || lines[1]["scraped_at"] != "2025-11-04T13:09:13Z" {
		t.Fatalf("unexpected ram line: %v", lines[1])
	}
}

func TestDualWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	jsonPath := filepath.Join(dir, "products.jsonl")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}

	if err := writer.Write(sampleRecords()); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
		t.Fatalf("json file missing or empty")
	}
}

func TestBuildUpsert(t *testing.T) {
	records := sampleRecords()
	records = append(records, Record{
		Product:   models.CPU{Name: "AMD Ryzen 5 7600", Brand: "AMD", Price: 189},
		ScrapedAt: records[0].ScrapedAt,
	})

	query, args := buildUpsert("run-1", records)

	if !strings.Contains(query, "($1,$2,$3,$4,$5,$6,$7,$8,$9,$10),($11,") {
		t.Fatalf("unexpected placeholders: %s", query)
	}
	if strings.Contains(query, "$21") {
		t.Fatalf("duplicate row should be dropped: %s", query)
	}
	if !strings.Contains(query, "ON CONFLICT (category, name) DO UPDATE") {
		t.Fatalf("missing upsert clause: %s", query)
	}
	if len(args) != 2*postgresColumns {
		t.Fatalf("args=%d, want %d", len(args), 2*postgresColumns)
	}
	if args[0] != "run-1" || args[1] != "cpu" || args[4] != 199.99 {
		t.Fatalf("unexpected cpu args: %v", args[:postgresColumns])
	}
	if freq := args[5].(sql.NullInt64); freq.Valid {
		t.Fatalf("absent cpu frequency should be NULL, got %v", freq)
	}
	if freq := args[postgresColumns+5].(sql.NullInt64); !freq.Valid || freq.Int64 != 3200 {
		t.Fatalf("ram frequency = %v, want 3200", freq)
	}
	if args[postgresColumns+7] != "DDR4" {
		t.Fatalf("ram type = %v", args[postgresColumns+7])
	}
}
