package credential

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
	"github.com/idtrace/traceability-controller/pkg/db/postgres/internal"
	kpool "github.com/idtrace/traceability-controller/pkg/db/postgres/pool"
	xe "github.com/idtrace/traceability-controller/pkg/errors"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

type pgCredential struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.CredentialInterface {
	return &pgCredential{pool: pool}
}

func (c *pgCredential) Store(ctx context.Context, label string, credentialId string, document vc.Document) error {
	doc, err := marshalDocument(document)
	if err != nil {
		return err
	}

	_, err = c.pool.Exec(
		ctx,
		`
		insert into "credential" ("label", "credential_id", "document")
		values ($1, $2, $3);
		`,
		label, credentialId, doc,
	)
	if err != nil {
		if internal.IsUniqueViolation(err, "") {
			return kdb.ErrAlreadyExists
		}
		return xe.Wrap(err)
	}
	return nil
}

func (c *pgCredential) Get(ctx context.Context, label string, credentialId string) (vc.Document, error) {
	row := c.pool.QueryRow(
		ctx,
		`
		select "document" from "credential"
		where "label" = $1 and "credential_id" = $2;
		`,
		label, credentialId,
	)

	doc := pgtype.JSONB{}
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kdb.ErrNotFound
		}
		return nil, xe.Wrap(err)
	}

	var document vc.Document
	if err := json.Unmarshal(doc.Bytes, &document); err != nil {
		return nil, xe.Wrap(err)
	}
	return document, nil
}

func marshalDocument(document vc.Document) (pgtype.JSONB, error) {
	buf, err := json.Marshal(document)
	if err != nil {
		return pgtype.JSONB{}, xe.Wrap(err)
	}
	return pgtype.JSONB{Bytes: buf, Status: pgtype.Present}, nil
}
