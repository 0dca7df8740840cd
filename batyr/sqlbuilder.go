// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// quoteIdent quotes a single SQL identifier.
func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// qualifiedName quotes a schema-qualified table name.
func qualifiedName(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// joinIdents quotes and comma-joins a list of identifiers.
func joinIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// buildCreateScratchTable creates a session-local temporary table with
// the structure of the target but none of its constraints, indexes or
// defaults. ON COMMIT DROP ties its lifetime to the transaction.
func buildCreateScratchTable(scratch, schema, table string) string {
	return fmt.Sprintf(
		"CREATE TEMPORARY TABLE %s ON COMMIT DROP AS SELECT * FROM %s LIMIT 0",
		quoteIdent(scratch), qualifiedName(schema, table),
	)
}

// buildScratchInsert builds the per-feature insert into the scratch
// table. Each placeholder carries an explicit cast to the target
// column's type so textual renderings convert on the server side.
func buildScratchInsert(scratch string, cols []string, typeOf map[string]string) string {
	placeholders := make([]string, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d::%s", i+1, quoteIdent(typeOf[col]))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(scratch), joinIdents(cols), strings.Join(placeholders, ", "),
	)
}

// buildUpdateChanged updates target rows whose primary key exists in the
// scratch table and whose non-key columns differ. Both predicates are
// NULL-safe.
func buildUpdateChanged(schema, table, scratch string, pkCols, updateCols []string) string {
	target := qualifiedName(schema, table)
	tbl := quoteIdent(table)
	scr := quoteIdent(scratch)

	sets := make([]string, len(updateCols))
	changed := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := quoteIdent(col)
		sets[i] = fmt.Sprintf("%s = %s.%s", q, scr, q)
		changed[i] = fmt.Sprintf("%s.%s IS DISTINCT FROM %s.%s", tbl, q, scr, q)
	}
	matches := make([]string, len(pkCols))
	for i, col := range pkCols {
		q := quoteIdent(col)
		matches[i] = fmt.Sprintf("%s.%s IS NOT DISTINCT FROM %s.%s", tbl, q, scr, q)
	}
	return fmt.Sprintf(
		"UPDATE %s SET %s FROM %s WHERE (%s) AND (%s)",
		target,
		strings.Join(sets, ", "),
		scr,
		strings.Join(matches, " AND "),
		strings.Join(changed, " OR "),
	)
}

// buildInsertMissing inserts scratch rows whose primary key has no
// NULL-safe match in the target.
func buildInsertMissing(schema, table, scratch string, insertCols, pkCols []string) string {
	target := qualifiedName(schema, table)
	scr := quoteIdent(scratch)

	selectCols := make([]string, len(insertCols))
	for i, col := range insertCols {
		selectCols[i] = fmt.Sprintf("%s.%s", scr, quoteIdent(col))
	}
	matches := make([]string, len(pkCols))
	for i, col := range pkCols {
		q := quoteIdent(col)
		matches[i] = fmt.Sprintf("existing.%s IS NOT DISTINCT FROM %s.%s", q, scr, q)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s WHERE NOT EXISTS (SELECT 1 FROM %s AS existing WHERE %s)",
		target,
		joinIdents(insertCols),
		strings.Join(selectCols, ", "),
		scr,
		target,
		strings.Join(matches, " AND "),
	)
}

// buildDeleteRemoved deletes target rows whose primary key has no
// NULL-safe match in the scratch table.
func buildDeleteRemoved(schema, table, scratch string, pkCols []string) string {
	target := qualifiedName(schema, table)
	tbl := quoteIdent(table)
	scr := quoteIdent(scratch)

	matches := make([]string, len(pkCols))
	for i, col := range pkCols {
		q := quoteIdent(col)
		matches[i] = fmt.Sprintf("%s.%s IS NOT DISTINCT FROM %s.%s", scr, q, tbl, q)
	}
	return fmt.Sprintf(
		"DELETE FROM %s WHERE NOT EXISTS (SELECT 1 FROM %s WHERE %s)",
		target,
		scr,
		strings.Join(matches, " AND "),
	)
}
