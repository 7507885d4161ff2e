package db

import (
	"context"
	"errors"
	"time"

	"github.com/idtrace/traceability-controller/pkg/vc"
)

// Sentinel errors repositories translate DB-level failures into.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrListFull      = errors.New("status list is full")
	ErrStaleUpdate   = errors.New("updated concurrently")
)

// Organization is a did:web namespace member managed by this controller.
type Organization struct {
	// Label is the lowercased path segment identifying the organization.
	Label string

	// Did is did:web:{domain}:{namespace}:{label} .
	Did string

	// Verkey is the base58 Ed25519 verification key held by the agent wallet.
	Verkey string

	RegisteredAt time.Time
}

type StatusList struct {
	Label    string
	ListType string

	// Size is the number of entries.
	Size int

	// NextIndex is the next free entry.
	NextIndex int

	// EncodedList is the gzip+base64 bitstring.
	EncodedList string

	// Credential is the signed status list credential.
	Credential vc.Document

	UpdatedAt time.Time
}

type OrganizationInterface interface {
	// Register creates an organization. ErrAlreadyExists when the label
	// is taken.
	Register(ctx context.Context, org Organization) (Organization, error)

	// Get returns the organization registered as label. ErrNotFound when
	// there is none.
	Get(ctx context.Context, label string) (Organization, error)
}

type CredentialInterface interface {
	// Store saves an issued credential. ErrAlreadyExists when the
	// organization already issued a credential with this id.
	Store(ctx context.Context, label string, credentialId string, document vc.Document) error

	// Get returns the stored credential. ErrNotFound when absent.
	Get(ctx context.Context, label string, credentialId string) (vc.Document, error)
}

type StatusListInterface interface {
	// Create saves a fresh status list. ErrAlreadyExists when the
	// organization already has a list of this type.
	Create(ctx context.Context, list StatusList) error

	// Get returns the status list of (label, listType). ErrNotFound when
	// absent.
	Get(ctx context.Context, label string, listType string) (StatusList, error)

	// AllocateIndex claims the next free entry of the list and returns it.
	// ErrNotFound when the list does not exist, ErrListFull when no entry
	// is left.
	AllocateIndex(ctx context.Context, label string, listType string) (int, error)

	// Update replaces the encoded bitstring and the signed credential,
	// but only while the stored bitstring still equals prevEncodedList.
	// ErrStaleUpdate when another writer got in between; callers re-read
	// and retry.
	Update(ctx context.Context, label string, listType string, prevEncodedList string, encodedList string, credential vc.Document) error
}

type ControllerDatabase interface {
	Organizations() OrganizationInterface
	Credentials() CredentialInterface
	StatusLists() StatusListInterface

	// Ping checks the database is reachable. Used by /status/ready .
	Ping(ctx context.Context) error

	Close() error
}
