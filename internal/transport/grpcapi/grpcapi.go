// Package grpcapi serves the predictors over gRPC. Messages are
// google.protobuf.Struct values carrying the same parameters as the HTTP
// query strings; game ids past 2^53 must be sent as strings.
package grpcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/konkers/sdv-predict/internal/save"
	"github.com/konkers/sdv-predict/internal/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "predict.v1.Predictor"

// PredictorServer is the server API of predict.v1.Predictor.
type PredictorServer interface {
	Geode(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Garbage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Weather(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WeatherRange(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NightEvent(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Forecast(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server adapts service.Predictor to PredictorServer.
type Server struct {
	P *service.Predictor
}

var _ PredictorServer = (*Server)(nil)

func (s *Server) Geode(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	get, err := params(in)
	if err != nil {
		return nil, err
	}
	preds, err := s.P.Geode(get)
	return reply(map[string]any{"predictions": preds}, err)
}

func (s *Server) Garbage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	get, err := params(in)
	if err != nil {
		return nil, err
	}
	preds, err := s.P.Garbage(get)
	return reply(map[string]any{"predictions": preds}, err)
}

func (s *Server) Weather(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	get, err := params(in)
	if err != nil {
		return nil, err
	}
	fc, err := s.P.Weather(get)
	return reply(fc, err)
}

func (s *Server) WeatherRange(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	get, err := params(in)
	if err != nil {
		return nil, err
	}
	res, err := s.P.WeatherDays(get)
	return reply(res, err)
}

func (s *Server) NightEvent(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	get, err := params(in)
	if err != nil {
		return nil, err
	}
	res, err := s.P.NightEvent(get)
	return reply(res, err)
}

func (s *Server) Forecast(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	get, err := params(in)
	if err != nil {
		return nil, err
	}
	res, err := s.P.Forecast(ctx, get)
	return reply(res, err)
}

// maxExactID is the largest integer a Struct number carries exactly.
const maxExactID = 1 << 53

// params checks the id fields and returns the request's lookup. A numeric
// id past maxExactID has already lost digits and is refused.
func params(in *structpb.Struct) (save.Lookup, error) {
	for _, key := range []string{"game_id", "multiplayer_id"} {
		n, ok := in.GetFields()[key].GetKind().(*structpb.Value_NumberValue)
		if !ok {
			continue
		}
		v := n.NumberValue
		if v != math.Trunc(v) || math.Abs(v) > maxExactID {
			return nil, status.Errorf(codes.InvalidArgument, "%s %v is not an exact integer; send it as a string", key, v)
		}
	}
	return lookup(in), nil
}

// lookup reads Struct fields as parameter strings. Lists become
// comma-separated values.
func lookup(in *structpb.Struct) save.Lookup {
	fields := in.GetFields()
	return func(key string) (string, bool) {
		v, ok := fields[key]
		if !ok {
			return "", false
		}
		return valueString(v), true
	}
}

func valueString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	case *structpb.Value_ListValue:
		parts := make([]string, 0, len(k.ListValue.GetValues()))
		for _, e := range k.ListValue.GetValues() {
			parts = append(parts, valueString(e))
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// reply converts a result to a Struct by way of its JSON form.
func reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch service.Classify(err) {
	case service.KindBadRequest:
		return status.Error(codes.InvalidArgument, err.Error())
	case service.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case service.KindBadData:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// Register adds the predictor service to s.
func Register(s grpc.ServiceRegistrar, srv PredictorServer) {
	s.RegisterService(&serviceDesc, srv)
}

func unary(method string, call func(PredictorServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	full := fmt.Sprintf("/%s/%s", ServiceName, method)
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PredictorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PredictorServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PredictorServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Geode", PredictorServer.Geode),
		unary("Garbage", PredictorServer.Garbage),
		unary("Weather", PredictorServer.Weather),
		unary("WeatherRange", PredictorServer.WeatherRange),
		unary("NightEvent", PredictorServer.NightEvent),
		unary("Forecast", PredictorServer.Forecast),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "predict/v1/predictor.proto",
}
