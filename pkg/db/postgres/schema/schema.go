// Package schema creates the controller's tables at daemon start.
package schema

import (
	"context"
	_ "embed"

	kpool "github.com/idtrace/traceability-controller/pkg/db/postgres/pool"
	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

//go:embed schema.sql
var ddl string

// Apply runs the DDL. Statements are idempotent (IF NOT EXISTS), so
// replicas racing at startup settle on the same schema.
func Apply(ctx context.Context, pool kpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	// serialize concurrent appliers.
	if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock($1)`, lockId); err != nil {
		return xe.Wrap(err)
	}
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return xe.Wrap(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

const lockId = int64(0x7472616365) // "trace"
