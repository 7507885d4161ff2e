package mocks

import (
	"context"
	"errors"

	kdb "github.com/idtrace/traceability-controller/pkg/db"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

type StatusListInterface struct {
	Impl struct {
		Create        func(context.Context, kdb.StatusList) error
		Get           func(context.Context, string, string) (kdb.StatusList, error)
		AllocateIndex func(context.Context, string, string) (int, error)
		Update        func(context.Context, string, string, string, string, vc.Document) error
	}
	Calls struct {
		Create CallLog[kdb.StatusList]
		Get    CallLog[struct {
			Label    string
			ListType string
		}]
		AllocateIndex CallLog[struct {
			Label    string
			ListType string
		}]
		Update CallLog[struct {
			Label           string
			ListType        string
			PrevEncodedList string
			EncodedList     string
			Credential      vc.Document
		}]
	}
}

func NewStatusListInterface() *StatusListInterface {
	return &StatusListInterface{}
}

var _ kdb.StatusListInterface = &StatusListInterface{}

func (s *StatusListInterface) Create(ctx context.Context, list kdb.StatusList) error {
	s.Calls.Create = append(s.Calls.Create, list)
	if s.Impl.Create != nil {
		return s.Impl.Create(ctx, list)
	}
	panic(errors.New("it should not be called"))
}

func (s *StatusListInterface) Get(ctx context.Context, label string, listType string) (kdb.StatusList, error) {
	s.Calls.Get = append(s.Calls.Get, struct {
		Label    string
		ListType string
	}{Label: label, ListType: listType})
	if s.Impl.Get != nil {
		return s.Impl.Get(ctx, label, listType)
	}
	panic(errors.New("it should not be called"))
}

func (s *StatusListInterface) AllocateIndex(ctx context.Context, label string, listType string) (int, error) {
	s.Calls.AllocateIndex = append(s.Calls.AllocateIndex, struct {
		Label    string
		ListType string
	}{Label: label, ListType: listType})
	if s.Impl.AllocateIndex != nil {
		return s.Impl.AllocateIndex(ctx, label, listType)
	}
	panic(errors.New("it should not be called"))
}

func (s *StatusListInterface) Update(ctx context.Context, label string, listType string, prevEncodedList string, encodedList string, credential vc.Document) error {
	s.Calls.Update = append(s.Calls.Update, struct {
		Label           string
		ListType        string
		PrevEncodedList string
		EncodedList     string
		Credential      vc.Document
	}{Label: label, ListType: listType, PrevEncodedList: prevEncodedList, EncodedList: encodedList, Credential: credential})
	if s.Impl.Update != nil {
		return s.Impl.Update(ctx, label, listType, prevEncodedList, encodedList, credential)
	}
	panic(errors.New("it should not be called"))
}
