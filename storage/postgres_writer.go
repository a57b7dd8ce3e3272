package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"rental-scraper/models"
)

// PostgresWriter archives merged rows to PostgreSQL, one run per call to New.
type PostgresWriter struct {
	db    *sqlx.DB
	runID uuid.UUID
}

// offerRecord is one archived report row.
type offerRecord struct {
	RunID        string    `db:"run_id"`
	Site         string    `db:"site"`
	SubURL       string    `db:"sub_url"`
	Title        string    `db:"title"`
	Make         string    `db:"make"`
	Model        string    `db:"model"`
	Year         *int      `db:"year"`
	Contract     string    `db:"contract"`
	Duration     string    `db:"duration"`
	Mileage      string    `db:"mileage"`
	BasePrice    *float64  `db:"base_price"`
	Savings      *float64  `db:"savings"`
	OfferedPrice *float64  `db:"offered_price"`
	ScrapedAt    time.Time `db:"scraped_at"`
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a writer stamped with a fresh run id.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db, runID: uuid.New()}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

// RunID identifies the rows written by this writer.
func (pw *PostgresWriter) RunID() uuid.UUID { return pw.runID }

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS rental_offers (
			id            SERIAL PRIMARY KEY,
			run_id        UUID          NOT NULL,
			site          VARCHAR(50)   NOT NULL,
			sub_url       TEXT          NOT NULL,
			title         TEXT          NOT NULL DEFAULT '',
			make          TEXT          NOT NULL DEFAULT '',
			model         TEXT          NOT NULL DEFAULT '',
			year          INTEGER,
			contract      VARCHAR(50)   NOT NULL DEFAULT '',
			duration      VARCHAR(50)   NOT NULL DEFAULT '',
			mileage       TEXT          NOT NULL DEFAULT '',
			base_price    NUMERIC(12,2),
			savings       NUMERIC(12,2),
			offered_price NUMERIC(12,2),
			scraped_at    TIMESTAMPTZ   NOT NULL,
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_rental_offers_run      ON rental_offers(run_id);
		CREATE INDEX IF NOT EXISTS idx_rental_offers_site     ON rental_offers(site);
		CREATE INDEX IF NOT EXISTS idx_rental_offers_sub_url  ON rental_offers(sub_url);
	`)
	return err
}

// Write batch-inserts every row of one site's report.
func (pw *PostgresWriter) Write(site string, rows []*models.MergedRow) error {
	records := toRecords(pw.runID, site, rows)
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		if _, err := pw.db.NamedExec(`
			INSERT INTO rental_offers (run_id, site, sub_url, title, make, model, year, contract,
				duration, mileage, base_price, savings, offered_price, scraped_at)
			VALUES (:run_id, :site, :sub_url, :title, :make, :model, :year, :contract,
				:duration, :mileage, :base_price, :savings, :offered_price, :scraped_at)
		`, records[i:end]); err != nil {
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	return nil
}

func toRecords(runID uuid.UUID, site string, rows []*models.MergedRow) []offerRecord {
	records := make([]offerRecord, 0, len(rows))
	for _, r := range rows {
		o := r.OfferOrEmpty()
		records = append(records, offerRecord{
			RunID:        runID.String(),
			Site:         site,
			SubURL:       r.Listing.SubURL,
			Title:        r.Listing.Title,
			Make:         r.Listing.Make,
			Model:        r.Listing.Model,
			Year:         r.Listing.Year,
			Contract:     r.Contract(),
			Duration:     o.Duration,
			Mileage:      o.Mileage,
			BasePrice:    o.BasePrice,
			Savings:      o.Savings,
			OfferedPrice: o.OfferedPrice,
			ScrapedAt:    r.Listing.ScrapedAt,
		})
	}
	return records
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// CountRun returns how many rows the current run archived for site.
func (pw *PostgresWriter) CountRun(site string) (int, error) {
	var n int
	err := pw.db.Get(&n, `SELECT COUNT(*) FROM rental_offers WHERE run_id = $1 AND site = $2`, pw.runID.String(), site)
	if err != nil {
		return 0, fmt.Errorf("postgres: count run: %w", err)
	}
	return n, nil
}
