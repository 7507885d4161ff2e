package mock

import (
	"context"
	"errors"

	"github.com/idtrace/traceability-controller/pkg/traction"
	"github.com/idtrace/traceability-controller/pkg/vc"
)

type CallLog[T any] []T

func (l CallLog[T]) Times() uint {
	return uint(len(l))
}

// Client is a hand-written test double of traction.Client.
// Set Impl fields per test; unset methods panic when called.
type Client struct {
	Impl struct {
		Ready              func(context.Context) error
		CreateDID          func(context.Context) (traction.CreatedDID, error)
		GetVerkey          func(context.Context, string) (string, error)
		SignDocument       func(context.Context, vc.Document, traction.SignOptions, string) (vc.Document, error)
		VerifyDocument     func(context.Context, vc.Document, string) (traction.VerifyResult, error)
		VerifyPresentation func(context.Context, vc.Document) (vc.Document, error)
	}
	Calls struct {
		Ready     CallLog[struct{}]
		CreateDID CallLog[struct{}]
		GetVerkey CallLog[struct{ Did string }]
		SignDocument CallLog[struct {
			Document vc.Document
			Options  traction.SignOptions
			Verkey   string
		}]
		VerifyDocument CallLog[struct {
			Document vc.Document
			Verkey   string
		}]
		VerifyPresentation CallLog[struct{ Presentation vc.Document }]
	}
}

func New() *Client {
	return &Client{}
}

var _ traction.Client = &Client{}

func (c *Client) Ready(ctx context.Context) error {
	c.Calls.Ready = append(c.Calls.Ready, struct{}{})
	if c.Impl.Ready != nil {
		return c.Impl.Ready(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (c *Client) CreateDID(ctx context.Context) (traction.CreatedDID, error) {
	c.Calls.CreateDID = append(c.Calls.CreateDID, struct{}{})
	if c.Impl.CreateDID != nil {
		return c.Impl.CreateDID(ctx)
	}
	panic(errors.New("it should not be called"))
}

func (c *Client) GetVerkey(ctx context.Context, did string) (string, error) {
	c.Calls.GetVerkey = append(c.Calls.GetVerkey, struct{ Did string }{Did: did})
	if c.Impl.GetVerkey != nil {
		return c.Impl.GetVerkey(ctx, did)
	}
	panic(errors.New("it should not be called"))
}

func (c *Client) SignDocument(ctx context.Context, document vc.Document, options traction.SignOptions, verkey string) (vc.Document, error) {
	c.Calls.SignDocument = append(c.Calls.SignDocument, struct {
		Document vc.Document
		Options  traction.SignOptions
		Verkey   string
	}{Document: document, Options: options, Verkey: verkey})
	if c.Impl.SignDocument != nil {
		return c.Impl.SignDocument(ctx, document, options, verkey)
	}
	panic(errors.New("it should not be called"))
}

func (c *Client) VerifyDocument(ctx context.Context, document vc.Document, verkey string) (traction.VerifyResult, error) {
	c.Calls.VerifyDocument = append(c.Calls.VerifyDocument, struct {
		Document vc.Document
		Verkey   string
	}{Document: document, Verkey: verkey})
	if c.Impl.VerifyDocument != nil {
		return c.Impl.VerifyDocument(ctx, document, verkey)
	}
	panic(errors.New("it should not be called"))
}

func (c *Client) VerifyPresentation(ctx context.Context, presentation vc.Document) (vc.Document, error) {
	c.Calls.VerifyPresentation = append(c.Calls.VerifyPresentation, struct{ Presentation vc.Document }{Presentation: presentation})
	if c.Impl.VerifyPresentation != nil {
		return c.Impl.VerifyPresentation(ctx, presentation)
	}
	panic(errors.New("it should not be called"))
}
