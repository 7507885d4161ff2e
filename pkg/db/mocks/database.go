package mocks

import (
	"context"
	"errors"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
)

type ControllerDatabase struct {
	OrganizationsMock *OrganizationInterface
	CredentialsMock   *CredentialInterface
	StatusListsMock   *StatusListInterface

	Impl struct {
		Ping func(context.Context) error
	}
	Calls struct {
		Ping  CallLog[struct{}]
		Close CallLog[struct{}]
	}
}

func NewControllerDatabase() *ControllerDatabase {
	return &ControllerDatabase{
		OrganizationsMock: NewOrganizationInterface(),
		CredentialsMock:   NewCredentialInterface(),
		StatusListsMock:   NewStatusListInterface(),
	}
}

var _ kdb.ControllerDatabase = &ControllerDatabase{}

func (d *ControllerDatabase) Organizations() kdb.OrganizationInterface {
	return d.OrganizationsMock
}

func (d *ControllerDatabase) Credentials() kdb.CredentialInterface {
	return d.CredentialsMock
}

func (d *ControllerDatabase) StatusLists() kdb.StatusListInterface {
	return d.StatusListsMock
}

func (d *ControllerDatabase) Ping(ctx context.Context) error {
	d.Calls.Ping = append(d.Calls.Ping, struct{}{})
	if d.Impl.Ping != nil {
		return d.Impl.Ping(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (d *ControllerDatabase) Close() error {
	d.Calls.Close = append(d.Calls.Close, struct{}{})
	return nil
}
