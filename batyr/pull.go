// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package batyr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// columnPlan partitions the target columns for one pull.
type columnPlan struct {
	pkCols         []string
	updateCols     []string
	insertCols     []string
	geometryColumn string
	typeOf         map[string]string
}

// scratchTableName derives the temporary table name from the job id.
func scratchTableName(jobID string) string {
	return scratchTablePrefix + strings.ReplaceAll(jobID, "-", "")
}

// buildColumnPlan matches the target columns against the lowercased
// source fields. Every non-key column is copied on update; the insert
// projection carries the geometry column plus every column the source
// also has. All primary key columns must be present in the source.
func buildColumnPlan(layer *Layer, targetFields []TargetField, sourceFields map[string]FieldDef) (*columnPlan, error) {
	plan := &columnPlan{
		typeOf: make(map[string]string, len(targetFields)),
	}
	var missingPK []string
	for _, tf := range targetFields {
		plan.typeOf[tf.Name] = tf.TypeName
		if tf.TypeName == "geometry" {
			if plan.geometryColumn != "" {
				return nil, fmt.Errorf("%w: target table %s.%s has more than one geometry column",
					ErrIntrospection, layer.TargetSchema, layer.TargetTable)
			}
			plan.geometryColumn = tf.Name
			plan.updateCols = append(plan.updateCols, tf.Name)
			plan.insertCols = append(plan.insertCols, tf.Name)
			continue
		}
		_, inSource := sourceFields[tf.Name]
		if tf.PrimaryKey {
			if !inSource {
				missingPK = append(missingPK, tf.Name)
				continue
			}
			plan.pkCols = append(plan.pkCols, tf.Name)
			plan.insertCols = append(plan.insertCols, tf.Name)
			continue
		}
		plan.updateCols = append(plan.updateCols, tf.Name)
		if inSource {
			plan.insertCols = append(plan.insertCols, tf.Name)
		}
	}
	if plan.geometryColumn == "" {
		return nil, fmt.Errorf("%w: target table %s.%s has no geometry column",
			ErrIntrospection, layer.TargetSchema, layer.TargetTable)
	}
	if len(missingPK) > 0 {
		return nil, fmt.Errorf("%w: the source is missing the primary key column(s) %s",
			ErrIntrospection, strings.Join(missingPK, ", "))
	}
	if len(plan.pkCols) == 0 {
		return nil, fmt.Errorf("%w: target table %s.%s has no usable primary key",
			ErrIntrospection, layer.TargetSchema, layer.TargetTable)
	}
	return plan, nil
}

// featureValues renders one feature as the textual value vector for the
// scratch insert, in insertCols order.
func featureValues(f Feature, plan *columnPlan, sourceFields map[string]FieldDef, ordinal int64) ([]any, error) {
	values := make([]any, 0, len(plan.insertCols))
	for _, col := range plan.insertCols {
		if col == plan.geometryColumn {
			wkbHex, err := EncodeGeometryHex(f.Geometry())
			if err != nil {
				return nil, fmt.Errorf("could not export the geometry from feature #%d: %w", ordinal, err)
			}
			values = append(values, wkbHex)
			continue
		}
		fd := sourceFields[col]
		switch fd.Kind {
		case FieldString:
			values = append(values, f.StringField(fd.Index))
		case FieldInteger:
			values = append(values, strconv.FormatInt(f.IntField(fd.Index), 10))
		case FieldReal:
			values = append(values, strconv.FormatFloat(f.RealField(fd.Index), 'g', -1, 64))
		default:
			return nil, fmt.Errorf("%w: unsupported source field type %d for column %q",
				ErrEncoding, int(fd.Kind), col)
		}
	}
	return values, nil
}

// pull synchronizes one layer into its target table: stream the source
// features into a scratch table, then reconcile the target against it
// with update, insert and delete statements inside one transaction.
func pull(ctx context.Context, db *database, layer *Layer, job *Job, logger *slog.Logger) error {
	ds, err := OpenDataset(layer.Source)
	if err != nil {
		return fmt.Errorf("%w: could not open dataset for layer %q: %v", ErrSource, layer.Name, err)
	}
	defer func() { _ = ds.Close() }()

	src, err := ds.Layer(layer.SourceLayer)
	if err != nil {
		return fmt.Errorf("%w: source layer %q of layer %q not found: %v",
			ErrSource, layer.SourceLayer, layer.Name, err)
	}
	src.Reset()

	if filter := job.Filter(); filter != "" {
		if err := src.SetFilter(filter); err != nil {
			return fmt.Errorf("%w: the filter for layer %q is invalid: %v; the applied filter was [ %s ]",
				ErrSource, layer.Name, err, filter)
		}
	}

	if n := src.GeometryFieldCount(); n != 1 {
		return fmt.Errorf("%w: source layer %q has %d geometry fields, expected exactly one",
			ErrSource, layer.SourceLayer, n)
	}

	sourceFields := make(map[string]FieldDef)
	for _, fd := range src.Fields() {
		fd.Name = strings.ToLower(fd.Name)
		sourceFields[fd.Name] = fd
	}

	tx, err := db.begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: could not start a database transaction: %v", ErrDB, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	scratch := scratchTableName(job.ID())
	if _, err := tx.Exec(ctx, buildCreateScratchTable(scratch, layer.TargetSchema, layer.TargetTable)); err != nil {
		return fmt.Errorf("%w: could not create the scratch table: %v", ErrDB, err)
	}

	targetFields, err := introspectTarget(ctx, tx, layer.TargetSchema, layer.TargetTable)
	if err != nil {
		return err
	}
	plan, err := buildColumnPlan(layer, targetFields, sourceFields)
	if err != nil {
		return err
	}

	stmtName := "batyr_insert_" + strings.ReplaceAll(job.ID(), "-", "")
	if _, err := tx.Prepare(ctx, stmtName, buildScratchInsert(scratch, plan.insertCols, plan.typeOf)); err != nil {
		return fmt.Errorf("%w: could not prepare the scratch insert: %v", ErrDB, err)
	}

	var stats JobStatistics
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: pull aborted: %v", ErrWorker, err)
		}
		f, ok := src.Next()
		if !ok {
			break
		}
		values, err := featureValues(f, plan, sourceFields, stats.Pulled)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, stmtName, values...); err != nil {
			return fmt.Errorf("%w: could not insert feature #%d into the scratch table: %v",
				ErrDB, stats.Pulled, err)
		}
		stats.Pulled++
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: pull aborted: %v", ErrWorker, err)
	}
	if len(plan.updateCols) > 0 {
		tag, err := tx.Exec(ctx, buildUpdateChanged(
			layer.TargetSchema, layer.TargetTable, scratch, plan.pkCols, plan.updateCols))
		if err != nil {
			return fmt.Errorf("%w: could not update existing features: %v", ErrDB, err)
		}
		stats.Updated = tag.RowsAffected()
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: pull aborted: %v", ErrWorker, err)
	}
	tag, err := tx.Exec(ctx, buildInsertMissing(
		layer.TargetSchema, layer.TargetTable, scratch, plan.insertCols, plan.pkCols))
	if err != nil {
		return fmt.Errorf("%w: could not insert missing features: %v", ErrDB, err)
	}
	stats.Created = tag.RowsAffected()

	if job.Filter() == "" || layer.AllowFilteredDelete {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: pull aborted: %v", ErrWorker, err)
		}
		tag, err := tx.Exec(ctx, buildDeleteRemoved(
			layer.TargetSchema, layer.TargetTable, scratch, plan.pkCols))
		if err != nil {
			return fmt.Errorf("%w: could not delete removed features: %v", ErrDB, err)
		}
		stats.Deleted = tag.RowsAffected()
	} else {
		logger.Info("delete step skipped for filtered pull",
			"layer", layer.Name, "job", job.ID())
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: could not commit the transaction: %v", ErrDB, err)
	}
	job.Finish(stats)
	logger.Info("pull finished",
		"layer", layer.Name,
		"job", job.ID(),
		"pulled", stats.Pulled,
		"created", stats.Created,
		"updated", stats.Updated,
		"deleted", stats.Deleted,
	)
	return nil
}
