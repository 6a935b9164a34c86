package sqlite

import (
	"fmt"
	"strings"
)

// columnsOf returns the set of columns actually present in the given table,
// cached per backend. Write paths for actions and paths use it to build
// statements that include only columns the on-device schema has, so a store
// whose migration has not caught up degrades to dropping optional fields
// instead of failing the write.
func (b *Backend) columnsOf(table string) (map[string]bool, error) {
	if cols, ok := b.columns[table]; ok {
		return cols, nil
	}

	rows, err := b.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("introspecting %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning table_info for %s: %w", table, err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table_info for %s: %w", table, err)
	}

	b.columns[table] = cols
	return cols, nil
}

// invalidateColumns drops the cached column set for a table after a schema
// change attempt.
func (b *Backend) invalidateColumns(table string) {
	delete(b.columns, table)
}

// ensurePathTagsColumn adds the paths.tags column when missing. Failure is
// swallowed: the write paths already tolerate the column's absence, and the
// ALTER may race a migration re-run.
func (b *Backend) ensurePathTagsColumn() {
	cols, err := b.columnsOf("paths")
	if err != nil {
		b.logger.Warn("could not introspect paths table", "error", err.Error())
		return
	}
	if cols["tags"] {
		return
	}
	if _, err := b.db.Exec("ALTER TABLE paths ADD COLUMN tags TEXT"); err != nil {
		b.logger.Warn("could not add paths.tags column", "error", err.Error())
		return
	}
	b.invalidateColumns("paths")
}

// buildInsert assembles an INSERT statement from the desired column/value
// pairs, keeping only columns present in the table. Column order follows the
// given slice.
func buildInsert(table string, present map[string]bool, cols []string, vals []any) (string, []any) {
	var keptCols []string
	var keptVals []any
	for i, c := range cols {
		if !present[c] {
			continue
		}
		keptCols = append(keptCols, c)
		keptVals = append(keptVals, vals[i])
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keptCols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(keptCols, ", "), placeholders)
	return query, keptVals
}

// buildUpdate assembles an UPDATE statement from the desired column/value
// pairs, keeping only columns present in the table. The key column and id are
// appended as the WHERE clause argument.
func buildUpdate(table string, present map[string]bool, cols []string, vals []any, keyCol, id string) (string, []any) {
	var sets []string
	var keptVals []any
	for i, c := range cols {
		if !present[c] {
			continue
		}
		sets = append(sets, c+" = ?")
		keptVals = append(keptVals, vals[i])
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		table, strings.Join(sets, ", "), keyCol)
	keptVals = append(keptVals, id)
	return query, keptVals
}
