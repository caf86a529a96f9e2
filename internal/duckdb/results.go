package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/exprtab"
)

// WriteContrastResults batch-inserts one contrast's moderated statistics
// using the Appender API. Existing rows for the contrast are deleted first
// so a re-export replaces rather than duplicates.
func (s *Store) WriteContrastResults(features []exprtab.Feature, stats *ebayes.Stats) error {
	if len(features) != len(stats.LogFC) {
		return fmt.Errorf("duckdb: %d features for %d statistics rows", len(features), len(stats.LogFC))
	}

	if _, err := s.db.Exec(`DELETE FROM contrast_results WHERE contrast = ?`, stats.Name); err != nil {
		return fmt.Errorf("clear contrast %q: %w", stats.Name, err)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "contrast_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for g, f := range features {
		err := appender.AppendRow(
			stats.Name,
			f.ID,
			f.Symbol,
			stats.LogFC[g],
			stats.T[g],
			stats.P[g],
			stats.AdjP[g],
			stats.Calls[g].String(),
		)
		if err != nil {
			return fmt.Errorf("append row for gene %q: %w", f.ID, err)
		}
	}

	if err := appender.Flush(); err != nil {
		return fmt.Errorf("flush appender: %w", err)
	}
	return nil
}

// CallCounts reads back the up/down/ns tallies for one contrast.
func (s *Store) CallCounts(contrast string) (up, down, notSig int, err error) {
	rows, err := s.db.Query(
		`SELECT call, COUNT(*) FROM contrast_results WHERE contrast = ? GROUP BY call`,
		contrast)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("query call counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var call string
		var n int
		if err := rows.Scan(&call, &n); err != nil {
			return 0, 0, 0, fmt.Errorf("scan call counts: %w", err)
		}
		switch call {
		case "up":
			up = n
		case "down":
			down = n
		default:
			notSig += n
		}
	}
	return up, down, notSig, rows.Err()
}

// Contrasts lists the contrasts present in the store.
func (s *Store) Contrasts() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT contrast FROM contrast_results ORDER BY contrast`)
	if err != nil {
		return nil, fmt.Errorf("query contrasts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan contrast: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
