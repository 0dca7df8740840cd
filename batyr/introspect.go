// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TargetField describes one column of the target table.
type TargetField struct {
	Name       string
	TypeName   string
	PrimaryKey bool
}

// udt_name rather than data_type so a PostGIS geometry column reports
// "geometry" instead of "USER-DEFINED".
const targetFieldsQuery = `
	SELECT c.column_name,
	       c.udt_name,
	       EXISTS (
	           SELECT 1
	           FROM information_schema.table_constraints tc
	           JOIN information_schema.key_column_usage kcu
	             ON kcu.constraint_name = tc.constraint_name
	            AND kcu.constraint_schema = tc.constraint_schema
	           WHERE tc.constraint_type = 'PRIMARY KEY'
	             AND tc.table_schema = c.table_schema
	             AND tc.table_name = c.table_name
	             AND kcu.column_name = c.column_name
	       ) AS is_primary_key
	FROM information_schema.columns c
	WHERE c.table_schema = @schema
	  AND c.table_name = @table_name
	ORDER BY c.ordinal_position`

// introspectTarget reads the column names, types and primary key
// membership of the target table within the pull transaction.
func introspectTarget(ctx context.Context, tx pgx.Tx, schema, table string) ([]TargetField, error) {
	rows, err := tx.Query(ctx, targetFieldsQuery, pgx.NamedArgs{
		"schema":     schema,
		"table_name": table,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: could not introspect %s.%s: %v", ErrDB, schema, table, err)
	}
	defer rows.Close()

	var fields []TargetField
	for rows.Next() {
		var f TargetField
		if err := rows.Scan(&f.Name, &f.TypeName, &f.PrimaryKey); err != nil {
			return nil, fmt.Errorf("%w: could not introspect %s.%s: %v", ErrDB, schema, table, err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: could not introspect %s.%s: %v", ErrDB, schema, table, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: target table %s.%s not found", ErrIntrospection, schema, table)
	}
	return fields, nil
}
