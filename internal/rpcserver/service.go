// Package rpcserver exposes the formula catalog as the gRPC service
// combicalc.v1.Calculator. Messages are google.protobuf.Struct values so the
// service needs no generated code.
package rpcserver

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/combicalc/internal/config"
	"github.com/cory-johannsen/combicalc/internal/formula"
	"github.com/cory-johannsen/combicalc/internal/i18n"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "combicalc.v1.Calculator"

// Full method names.
const (
	EvaluateMethod     = "/" + ServiceName + "/Evaluate"
	ListFormulasMethod = "/" + ServiceName + "/ListFormulas"
)

// CalculatorServer is the server API for the Calculator service.
//
// Evaluate takes {formula: string, args: [number|string]} and returns
// {formula, args, value, display, integral, float}. ListFormulas returns
// {formulas: [...]}.
type CalculatorServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFormulas(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ServiceDesc is the grpc.ServiceDesc for the Calculator service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "ListFormulas", Handler: listFormulasHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "combicalc/v1/calculator.proto",
}

// RegisterCalculatorServer registers srv on s.
func RegisterCalculatorServer(s grpc.ServiceRegistrar, srv CalculatorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: EvaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func listFormulasHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).ListFormulas(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListFormulasMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalculatorServer).ListFormulas(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// CalculatorService implements CalculatorServer on top of a formula.Evaluator.
type CalculatorService struct {
	evaluator *formula.Evaluator
	bundle    *i18n.Bundle
	cfg       config.CalculatorConfig
	logger    *zap.Logger
}

// NewCalculatorService creates a CalculatorService. cfg.Locale is the language
// used when a call carries no x-locale header.
//
// Precondition: evaluator, bundle and logger must be non-nil.
func NewCalculatorService(
	evaluator *formula.Evaluator,
	bundle *i18n.Bundle,
	cfg config.CalculatorConfig,
	logger *zap.Logger,
) *CalculatorService {
	return &CalculatorService{evaluator: evaluator, bundle: bundle, cfg: cfg, logger: logger}
}

// NewServer creates a grpc.Server with the request ID interceptor installed
// and svc registered.
func NewServer(svc CalculatorServer, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryServerInterceptor(logger, nil))}, opts...)
	s := grpc.NewServer(opts...)
	RegisterCalculatorServer(s, svc)
	return s
}

// localizer picks the caller's language from the x-locale header.
func (s *CalculatorService) localizer(ctx context.Context) *i18n.Localizer {
	locale := s.cfg.Locale
	if requested := incomingValue(ctx, LocaleHeader); requested != "" {
		if matched, ok := s.bundle.Match(requested); ok {
			locale = matched
		}
	}
	return s.bundle.Localizer(locale, s.cfg.Precision)
}

// Evaluate computes one formula.
//
// Postcondition: Returns the result, or a status with code InvalidArgument or
// NotFound carrying ErrorInfo and LocalizedMessage details.
func (s *CalculatorService) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	loc := s.localizer(ctx)
	name, args, err := decodeEvaluateRequest(req)
	if err != nil {
		return nil, statusError(loc, err)
	}
	res, err := s.evaluator.Evaluate(name, args...)
	if err != nil {
		return nil, statusError(loc, err)
	}

	outArgs := make([]any, len(res.Args))
	for i, a := range res.Args {
		outArgs[i] = a
	}
	out, err := structpb.NewStruct(map[string]any{
		"formula":  res.Formula.ID,
		"args":     outArgs,
		"value":    res.Value.String(),
		"display":  loc.Value(res.Value),
		"integral": res.Value.IsInt(),
		"float":    res.Value.Float64(),
	})
	if err != nil {
		s.logger.Error("encoding evaluate response", zap.String("request_id", RequestIDFromContext(ctx)), zap.Error(err))
		return nil, statusError(loc, err)
	}
	return out, nil
}

// ListFormulas describes every registered formula in registration order.
func (s *CalculatorService) ListFormulas(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	loc := s.localizer(ctx)
	formulas := s.evaluator.Registry().Formulas()
	list := make([]any, 0, len(formulas))
	for _, f := range formulas {
		aliases := make([]any, len(f.Aliases))
		for i, a := range f.Aliases {
			aliases[i] = a
		}
		list = append(list, map[string]any{
			"id":         f.ID,
			"aliases":    aliases,
			"family":     string(f.Family),
			"repetition": f.Repetition,
			"title":      loc.FormulaTitle(f),
			"notation":   f.Notation,
			"usage":      f.Usage(),
		})
	}
	out, err := structpb.NewStruct(map[string]any{"formulas": list})
	if err != nil {
		return nil, statusError(loc, err)
	}
	return out, nil
}

// decodeEvaluateRequest extracts the formula name and integer arguments.
// Arguments may be numbers or strings; a string may hold a comma-separated
// list such as "2,2,2".
func decodeEvaluateRequest(req *structpb.Struct) (string, []int, error) {
	name := req.GetFields()["formula"].GetStringValue()
	if name == "" {
		return "", nil, fmt.Errorf("formula is required: %w", formula.ErrEmptyInput)
	}

	var args []int
	for i, v := range req.GetFields()["args"].GetListValue().GetValues() {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_NumberValue:
			n, err := toInt(kind.NumberValue)
			if err != nil {
				return "", nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			args = append(args, n)
		case *structpb.Value_StringValue:
			parsed, err := formula.ParseArgs([]string{kind.StringValue})
			if err != nil {
				return "", nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			args = append(args, parsed...)
		default:
			return "", nil, fmt.Errorf("args[%d]: %w", i, formula.ErrNotInteger)
		}
	}
	return name, args, nil
}

// maxExactFloat is the largest magnitude at which every integer is a float64.
const maxExactFloat = 1 << 53

func toInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v: %w", f, formula.ErrNotInteger)
	}
	if math.Abs(f) > maxExactFloat {
		return 0, fmt.Errorf("%v: %w", f, formula.ErrOperandTooLarge)
	}
	return int(f), nil
}
