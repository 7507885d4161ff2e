package statuslist

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

type pgStatusList struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.StatusListInterface {
	return &pgStatusList{pool: pool}
}

func (s *pgStatusList) Create(ctx context.Context, list kdb.StatusList) error {
	credential, err := marshalCredential(list.Credential)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(
		ctx,
		`
		insert into "status_list"
			("label", "list_type", "size", "next_index", "encoded_list", "credential")
		values
			($1, $2, $3, $4, $5, $6);
		`,
		list.Label, list.ListType, list.Size, list.NextIndex, list.EncodedList, credential,
	)
	if err != nil {
		if internal.IsUniqueViolation(err, "") {
			return kdb.ErrAlreadyExists
		}
		return xe.Wrap(err)
	}
	return nil
}

func (s *pgStatusList) Get(ctx context.Context, label string, listType string) (kdb.StatusList, error) {
	list := kdb.StatusList{Label: label, ListType: listType}
	row := s.pool.QueryRow(
		ctx,
		`
		select "size", "next_index", "encoded_list", "credential", "updated_at"
		from "status_list"
		where "label" = $1 and "list_type" = $2;
		`,
		label, listType,
	)

	credential := pgtype.JSONB{}
	if err := row.Scan(
		&list.Size, &list.NextIndex, &list.EncodedList, &credential, &list.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kdb.StatusList{}, kdb.ErrNotFound
		}
		return kdb.StatusList{}, xe.Wrap(err)
	}

	if err := json.Unmarshal(credential.Bytes, &list.Credential); err != nil {
		return kdb.StatusList{}, xe.Wrap(err)
	}
	return list, nil
}

func (s *pgStatusList) AllocateIndex(ctx context.Context, label string, listType string) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(
		ctx,
		`
		update "status_list"
		set "next_index" = "next_index" + 1
		where "label" = $1 and "list_type" = $2 and "next_index" < "size"
		returning "next_index" - 1;
		`,
		label, listType,
	)

	var index int
	if err := row.Scan(&index); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, xe.Wrap(err)
		}

		// no row: either the list is missing or it is exhausted.
		var exists bool
		if err := tx.QueryRow(
			ctx,
			`
			select exists (
				select 1 from "status_list"
				where "label" = $1 and "list_type" = $2
			);
			`,
			label, listType,
		).Scan(&exists); err != nil {
			return 0, xe.Wrap(err)
		}
		if !exists {
			return 0, kdb.ErrNotFound
		}
		return 0, kdb.ErrListFull
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, xe.Wrap(err)
	}
	return index, nil
}

func (s *pgStatusList) Update(ctx context.Context, label string, listType string, prevEncodedList string, encodedList string, credential vc.Document) error {
	doc, err := marshalCredential(credential)
	if err != nil {
		return err
	}

	// optimistic: the write lands only while nobody else flipped a bit
	// since the caller read prevEncodedList.
	tag, err := s.pool.Exec(
		ctx,
		`
		update "status_list"
		set "encoded_list" = $4, "credential" = $5, "updated_at" = now()
		where "label" = $1 and "list_type" = $2 and "encoded_list" = $3;
		`,
		label, listType, prevEncodedList, encodedList, doc,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(
			ctx,
			`
			select exists (
				select 1 from "status_list"
				where "label" = $1 and "list_type" = $2
			);
			`,
			label, listType,
		).Scan(&exists); err != nil {
			return xe.Wrap(err)
		}
		if !exists {
			return kdb.ErrNotFound
		}
		return kdb.ErrStaleUpdate
	}
	return nil
}

func marshalCredential(credential vc.Document) (pgtype.JSONB, error) {
	buf, err := json.Marshal(credential)
	if err != nil {
		return pgtype.JSONB{}, xe.Wrap(err)
	}
	return pgtype.JSONB{Bytes: buf, Status: pgtype.Present}, nil
}
