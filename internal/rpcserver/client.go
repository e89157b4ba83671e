package rpcserver

import (
	"context"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Evaluation is a decoded Evaluate response.
type Evaluation struct {
	Formula  string
	Args     []int
	Value    string // exact value, e.g. "90" or "2/9"
	Display  string // localized rendering, e.g. "2/9 ≈ 0.2222"
	Integral bool
	Float    float64
}

// FormulaInfo is one entry of a ListFormulas response.
type FormulaInfo struct {
	ID         string
	Aliases    []string
	Family     string
	Repetition bool
	Title      string
	Notation   string
	Usage      string
}

// Client is a typed wrapper over a connection to the Calculator service.
type Client struct {
	cc     grpc.ClientConnInterface
	locale string
}

// NewClient wraps cc. A non-empty locale is sent as the x-locale header on
// every call.
func NewClient(cc grpc.ClientConnInterface, locale string) *Client {
	return &Client{cc: cc, locale: locale}
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	if c.locale == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, LocaleHeader, c.locale)
}

// Evaluate computes the named formula on the server.
//
// Postcondition: Returns the evaluation, or a gRPC status error. Use
// LocalizedMessage to extract the user-facing text.
func (c *Client) Evaluate(ctx context.Context, name string, args ...int) (Evaluation, error) {
	list := make([]any, len(args))
	for i, a := range args {
		list[i] = a
	}
	req, err := structpb.NewStruct(map[string]any{"formula": name, "args": list})
	if err != nil {
		return Evaluation{}, fmt.Errorf("encoding request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(c.outgoing(ctx), EvaluateMethod, req, out); err != nil {
		return Evaluation{}, err
	}

	fields := out.GetFields()
	ev := Evaluation{
		Formula:  fields["formula"].GetStringValue(),
		Value:    fields["value"].GetStringValue(),
		Display:  fields["display"].GetStringValue(),
		Integral: fields["integral"].GetBoolValue(),
		Float:    fields["float"].GetNumberValue(),
	}
	for _, v := range fields["args"].GetListValue().GetValues() {
		ev.Args = append(ev.Args, int(v.GetNumberValue()))
	}
	return ev, nil
}

// ListFormulas fetches the formula catalog.
func (c *Client) ListFormulas(ctx context.Context) ([]FormulaInfo, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(c.outgoing(ctx), ListFormulasMethod, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	values := out.GetFields()["formulas"].GetListValue().GetValues()
	infos := make([]FormulaInfo, 0, len(values))
	for _, v := range values {
		fields := v.GetStructValue().GetFields()
		info := FormulaInfo{
			ID:         fields["id"].GetStringValue(),
			Family:     fields["family"].GetStringValue(),
			Repetition: fields["repetition"].GetBoolValue(),
			Title:      fields["title"].GetStringValue(),
			Notation:   fields["notation"].GetStringValue(),
			Usage:      fields["usage"].GetStringValue(),
		}
		for _, a := range fields["aliases"].GetListValue().GetValues() {
			info.Aliases = append(info.Aliases, a.GetStringValue())
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// LocalizedMessage returns the user-facing message attached to a status
// error by the server.
func LocalizedMessage(err error) (string, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, d := range st.Details() {
		if lm, ok := d.(*errdetails.LocalizedMessage); ok {
			return lm.GetMessage(), true
		}
	}
	return "", false
}

// ErrorReason returns the ErrorInfo reason attached to a status error.
func ErrorReason(err error) (string, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason(), true
		}
	}
	return "", false
}
