package organization

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
	"github.com/idtrace/traceability-controller/pkg/db/postgres/internal"
	kpool "github.com/idtrace/traceability-controller/pkg/db/postgres/pool"
	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

type pgOrganization struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.OrganizationInterface {
	return &pgOrganization{pool: pool}
}

func (o *pgOrganization) Register(ctx context.Context, org kdb.Organization) (kdb.Organization, error) {
	row := o.pool.QueryRow(
		ctx,
		`
		insert into "organization" ("label", "did", "verkey")
		values ($1, $2, $3)
		returning "registered_at";
		`,
		org.Label, org.Did, org.Verkey,
	)
	if err := row.Scan(&org.RegisteredAt); err != nil {
		if internal.IsUniqueViolation(err, "") {
			return kdb.Organization{}, kdb.ErrAlreadyExists
		}
		return kdb.Organization{}, xe.Wrap(err)
	}
	return org, nil
}

func (o *pgOrganization) Get(ctx context.Context, label string) (kdb.Organization, error) {
	org := kdb.Organization{Label: label}
	row := o.pool.QueryRow(
		ctx,
		`
		select "did", "verkey", "registered_at" from "organization"
		where "label" = $1;
		`,
		label,
	)
	if err := row.Scan(&org.Did, &org.Verkey, &org.RegisteredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kdb.Organization{}, kdb.ErrNotFound
		}
		return kdb.Organization{}, xe.Wrap(err)
	}
	return org, nil
}
