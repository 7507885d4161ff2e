package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
	kpgcred "github.com/idtrace/traceability-controller/pkg/db/postgres/credential"
	kpgorg "github.com/idtrace/traceability-controller/pkg/db/postgres/organization"
	kpool "github.com/idtrace/traceability-controller/pkg/db/postgres/pool"
	kpgschema "github.com/idtrace/traceability-controller/pkg/db/postgres/schema"
	kpgsl "github.com/idtrace/traceability-controller/pkg/db/postgres/statuslist"
	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

type controllerDBPostgres struct {
	pool          *pgxpool.Pool
	organizations kdb.OrganizationInterface
	credentials   kdb.CredentialInterface
	statusLists   kdb.StatusListInterface
}

// New connects to postgres at url and prepares the schema.
func New(ctx context.Context, url string) (kdb.ControllerDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	p := kpool.Wrap(pool)
	if err := kpgschema.Apply(ctx, p); err != nil {
		pool.Close()
		return nil, xe.Wrap(err)
	}

	return &controllerDBPostgres{
		pool:          pool,
		organizations: kpgorg.New(p),
		credentials:   kpgcred.New(p),
		statusLists:   kpgsl.New(p),
	}, nil
}

func (c *controllerDBPostgres) Organizations() kdb.OrganizationInterface {
	return c.organizations
}

func (c *controllerDBPostgres) Credentials() kdb.CredentialInterface {
	return c.credentials
}

func (c *controllerDBPostgres) StatusLists() kdb.StatusListInterface {
	return c.statusLists
}

func (c *controllerDBPostgres) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *controllerDBPostgres) Close() error {
	c.pool.Close()
	return nil
}
