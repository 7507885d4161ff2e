package mocks

import (
	"context"
	"errors"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

type CredentialInterface struct {
	Impl struct {
		Store func(context.Context, string, string, vc.Document) error
		Get   func(context.Context, string, string) (vc.Document, error)
	}
	Calls struct {
		Store CallLog[struct {
			Label        string
			CredentialId string
			Document     vc.Document
		}]
		Get CallLog[struct {
			Label        string
			CredentialId string
		}]
	}
}

func NewCredentialInterface() *CredentialInterface {
	return &CredentialInterface{}
}

var _ kdb.CredentialInterface = &CredentialInterface{}

func (c *CredentialInterface) Store(ctx context.Context, label string, credentialId string, document vc.Document) error {
	c.Calls.Store = append(c.Calls.Store, struct {
		Label        string
		CredentialId string
		Document     vc.Document
	}{Label: label, CredentialId: credentialId, Document: document})
	if c.Impl.Store != nil {
		return c.Impl.Store(ctx, label, credentialId, document)
	}
	panic(errors.New("it should not be called"))
}

func (c *CredentialInterface) Get(ctx context.Context, label string, credentialId string) (vc.Document, error) {
	c.Calls.Get = append(c.Calls.Get, struct {
		Label        string
		CredentialId string
	}{Label: label, CredentialId: credentialId})
	if c.Impl.Get != nil {
		return c.Impl.Get(ctx, label, credentialId)
	}
	panic(errors.New("it should not be called"))
}
