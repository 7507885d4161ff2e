package mocks

import (
	"context"
	"errors"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
)

type OrganizationInterface struct {
	Impl struct {
		Register func(context.Context, kdb.Organization) (kdb.Organization, error)
		Get      func(context.Context, string) (kdb.Organization, error)
	}
	Calls struct {
		Register CallLog[kdb.Organization]
		Get      CallLog[struct{ Label string }]
	}
}

func NewOrganizationInterface() *OrganizationInterface {
	return &OrganizationInterface{}
}

var _ kdb.OrganizationInterface = &OrganizationInterface{}

func (o *OrganizationInterface) Register(ctx context.Context, org kdb.Organization) (kdb.Organization, error) {
	o.Calls.Register = append(o.Calls.Register, org)
	if o.Impl.Register != nil {
		return o.Impl.Register(ctx, org)
	}
	panic(errors.New("it should not be called"))
}

func (o *OrganizationInterface) Get(ctx context.Context, label string) (kdb.Organization, error) {
	o.Calls.Get = append(o.Calls.Get, struct{ Label string }{Label: label})
	if o.Impl.Get != nil {
		return o.Impl.Get(ctx, label)
	}
	panic(errors.New("it should not be called"))
}
