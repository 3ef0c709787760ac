package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const (
	postgresColumns     = 10
	postgresConnectWait = 2 * time.Second
	postgresPingTries   = 5
)

const productsSchema = `
CREATE TABLE IF NOT EXISTS products (
	id          SERIAL PRIMARY KEY,
	run_id      UUID          NOT NULL,
	category    VARCHAR(8)    NOT NULL,
	name        TEXT          NOT NULL,
	brand       TEXT          NOT NULL DEFAULT '',
	price       NUMERIC(12,2) NOT NULL,
	frequency   INTEGER,
	memory      INTEGER,
	ram_type    TEXT          NOT NULL DEFAULT '',
	power       INTEGER,
	scraped_at  TIMESTAMPTZ   NOT NULL,
	UNIQUE (category, name)
);

CREATE INDEX IF NOT EXISTS idx_products_run_id   ON products(run_id);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
`

// PostgresWriter upserts records into the products table. A product already
// stored by an earlier run is refreshed with the latest values and run id.
type PostgresWriter struct {
	db    *sql.DB
	runID string
}

// NewPostgresWriter connects to dsn, migrates the schema and stamps every
// row it writes with runID.
func NewPostgresWriter(ctx context.Context, dsn, runID string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < postgresPingTries; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(postgresConnectWait):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	if _, err := db.ExecContext(ctx, productsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return &PostgresWriter{db: db, runID: runID}, nil
}

// Write upserts records in a single statement.
func (pw *PostgresWriter) Write(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	query, args := buildUpsert(pw.runID, records)
	if _, err := pw.db.Exec(query, args...); err != nil {
		return fmt.Errorf("postgres: upsert %d records: %w", len(records), err)
	}
	return nil
}

// Close closes the connection pool.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// Validate checks that this run stored at least one row.
func (pw *PostgresWriter) Validate() error {
	var count int
	if err := pw.db.QueryRow(`SELECT COUNT(*) FROM products WHERE run_id = $1`, pw.runID).Scan(&count); err != nil {
		return fmt.Errorf("postgres: count run rows: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("postgres: no rows stored for run %s", pw.runID)
	}
	return nil
}

// buildUpsert renders a multi-row insert. Rows sharing a category and name
// keep only the first, since one statement cannot update a row twice.
func buildUpsert(runID string, records []Record) (string, []any) {
	valueStrings := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*postgresColumns)
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		key := string(record.Category()) + "|" + record.Product.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		base := len(args)
		placeholders := make([]string, postgresColumns)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", base+i+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		fields := record.Product.Fields()
		args = append(args,
			runID,
			string(record.Category()),
			fields["name"],
			stringField(fields, "brand"),
			fields["price"],
			nullInt(fields, "frequency"),
			nullInt(fields, "memory"),
			stringField(fields, "ram_type"),
			nullInt(fields, "power"),
			record.ScrapedAt,
		)
	}

	query := fmt.Sprintf(`
INSERT INTO products (run_id, category, name, brand, price, frequency, memory, ram_type, power, scraped_at)
VALUES %s
ON CONFLICT (category, name) DO UPDATE SET
	run_id = EXCLUDED.run_id,
	brand = EXCLUDED.brand,
	price = EXCLUDED.price,
	frequency = EXCLUDED.frequency,
	memory = EXCLUDED.memory,
	ram_type = EXCLUDED.ram_type,
	power = EXCLUDED.power,
	scraped_at = EXCLUDED.scraped_at`, strings.Join(valueStrings, ","))

	return query, args
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func nullInt(fields map[string]any, key string) sql.NullInt64 {
	n, ok := fields[key].(int)
	if !ok || n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
