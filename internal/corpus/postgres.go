package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Querier is the subset of *sql.DB the Postgres source needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// LoadPostgres reads verses from a table with columns (sura, aya, text),
// ordered the same way the text files are.
func LoadPostgres(ctx context.Context, db Querier, table string) (*Corpus, error) {
	query := fmt.Sprintf("SELECT sura, aya, text FROM %s ORDER BY sura, aya", pq.QuoteIdentifier(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying verses from %s: %w", table, err)
	}
	defer rows.Close()

	var verses []Verse
	for rows.Next() {
		var v Verse
		if err := rows.Scan(&v.Sura, &v.Aya, &v.Text); err != nil {
			return nil, fmt.Errorf("scanning verse row: %w", err)
		}
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verse rows: %w", err)
	}
	return New(verses), nil
}

// WritePostgres creates table when missing, empties it and bulk-loads c
// with COPY. Run it inside a transaction so readers never see a half-filled
// table.
func WritePostgres(ctx context.Context, tx *sql.Tx, table string, c *Corpus) error {
	name := pq.QuoteIdentifier(table)
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	sura INTEGER NOT NULL,
	aya  INTEGER NOT NULL,
	text TEXT    NOT NULL,
	PRIMARY KEY (sura, aya)
)`, name)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, "TRUNCATE "+name); err != nil {
		return fmt.Errorf("truncating %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, "sura", "aya", "text"))
	if err != nil {
		return fmt.Errorf("preparing copy into %s: %w", table, err)
	}
	defer stmt.Close()
	for _, v := range c.Verses() {
		if _, err := stmt.ExecContext(ctx, v.Sura, v.Aya, v.Text); err != nil {
			return fmt.Errorf("copying verse %s: %w", v.Key(), err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flushing copy into %s: %w", table, err)
	}
	return nil
}
