// Package status orchestrates per-organization status lists: lazy creation,
// entry allocation for new credentials, bit updates and re-signing.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
	xe "github.com/idtrace/traceability-controller/pkg/errors"
	"github.com/idtrace/traceability-controller/pkg/traction"
	"github.com/idtrace/traceability-controller/pkg/utils/retry"
	"github.com/idtrace/traceability-controller/pkg/vc"
	sl "github.com/idtrace/traceability-controller/pkg/vc/statuslist"
	"github.com/idtrace/traceability-controller/pkg/worker"
)

type Manager struct {
	database kdb.ControllerDatabase
	agent    traction.Client

	// listURL renders the public URL of (label, listType).
	listURL func(label string, listType string) string

	// size of freshly created lists.
	size int
}

func NewManager(
	database kdb.ControllerDatabase,
	agent traction.Client,
	listURL func(label string, listType string) string,
) *Manager {
	return &Manager{
		database: database,
		agent:    agent,
		listURL:  listURL,
		size:     sl.DefaultSize,
	}
}

func (m *Manager) signOptions(org kdb.Organization) traction.SignOptions {
	return traction.SignOptions{
		VerificationMethod: org.Did + "#verkey",
		ProofPurpose:       "assertionMethod",
	}
}

// CreateEntry claims a fresh entry of org's list of type t, creating and
// signing the list first when org has none yet.
func (m *Manager) CreateEntry(ctx context.Context, org kdb.Organization, t sl.ListType) (vc.StatusEntry, error) {
	url := m.listURL(org.Label, string(t))

	index, err := m.database.StatusLists().AllocateIndex(ctx, org.Label, string(t))
	if errors.Is(err, kdb.ErrNotFound) {
		if err := m.createList(ctx, org, t, url); err != nil {
			return vc.StatusEntry{}, err
		}
		index, err = m.database.StatusLists().AllocateIndex(ctx, org.Label, string(t))
	}
	if err != nil {
		return vc.StatusEntry{}, err
	}

	return t.Entry(url, index), nil
}

func (m *Manager) createList(ctx context.Context, org kdb.Organization, t sl.ListType, url string) error {
	encoded, err := sl.NewBitstring(m.size).Encode()
	if err != nil {
		return err
	}

	credential := t.NewCredential(org.Did, url, encoded, time.Now())
	signed, err := m.agent.SignDocument(ctx, credential, m.signOptions(org), org.Verkey)
	if err != nil {
		return err
	}

	err = m.database.StatusLists().Create(ctx, kdb.StatusList{
		Label:       org.Label,
		ListType:    string(t),
		Size:        m.size,
		NextIndex:   0,
		EncodedList: encoded,
		Credential:  signed,
	})
	if errors.Is(err, kdb.ErrAlreadyExists) {
		// another replica won the race; its list serves as well.
		return nil
	}
	return err
}

// Revoked reports the status bit behind a credential's entry.
func (m *Manager) Revoked(ctx context.Context, label string, entry vc.StatusEntry) (bool, error) {
	t, err := sl.ParseListType(entry.Type)
	if err != nil {
		return false, err
	}
	index, err := entry.Index()
	if err != nil {
		return false, err
	}

	list, err := m.database.StatusLists().Get(ctx, label, string(t))
	if err != nil {
		return false, err
	}
	bits, err := sl.DecodeBitstring(list.EncodedList)
	if err != nil {
		return false, err
	}
	return bits.Get(index)
}

// SetStatus flips the bit behind entry. The stored signed credential keeps
// its old proof until a ResignJob runs.
//
// The flip is read-modify-write guarded by an optimistic Update: when a
// concurrent writer changed the bitstring in between, the whole cycle is
// retried against the fresh state, so no flip is lost.
func (m *Manager) SetStatus(ctx context.Context, label string, entry vc.StatusEntry, value bool) error {
	t, err := sl.ParseListType(entry.Type)
	if err != nil {
		return err
	}
	index, err := entry.Index()
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		list, err := m.database.StatusLists().Get(ctx, label, string(t))
		if err != nil {
			return err
		}
		bits, err := sl.DecodeBitstring(list.EncodedList)
		if err != nil {
			return err
		}
		if err := bits.Set(index, value); err != nil {
			return err
		}
		encoded, err := bits.Encode()
		if err != nil {
			return err
		}

		err = m.database.StatusLists().Update(
			ctx, label, string(t), list.EncodedList, encoded, list.Credential,
		)
		if errors.Is(err, kdb.ErrStaleUpdate) {
			continue
		}
		return err
	}
}

const resignAttempts = 3

// ResignJob returns a worker job rebuilding and re-signing the status list
// credential from the stored bitstring. Transient agent failures are
// retried with backoff inside the job.
func (m *Manager) ResignJob(label string, t sl.ListType) worker.Job {
	return func(ctx context.Context) error {
		backoff := retry.ExponentialBackoff(1*time.Second, 2)

		attempt := 0
		var lastErr error
		for attempt < resignAttempts {
			if lastErr = m.resign(ctx, label, t); lastErr == nil {
				return nil
			}
			attempt++
			if attempt < resignAttempts {
				if err := backoff(ctx); err != nil {
					return err
				}
			}
		}
		return xe.WrapWithNote(
			fmt.Sprintf("resign %s/%s gave up after %d attempts", label, t, resignAttempts),
			lastErr,
		)
	}
}

func (m *Manager) resign(ctx context.Context, label string, t sl.ListType) error {
	org, err := m.database.Organizations().Get(ctx, label)
	if err != nil {
		return err
	}
	list, err := m.database.StatusLists().Get(ctx, label, string(t))
	if err != nil {
		return err
	}

	url := m.listURL(label, string(t))
	credential := t.NewCredential(org.Did, url, list.EncodedList, time.Now())
	signed, err := m.agent.SignDocument(ctx, credential, m.signOptions(org), org.Verkey)
	if err != nil {
		return err
	}

	// guarded by the same optimistic check: a bit flipped while signing
	// makes this ErrStaleUpdate, and the job retries with the new bits.
	return m.database.StatusLists().Update(
		ctx, label, string(t), list.EncodedList, list.EncodedList, signed,
	)
}
