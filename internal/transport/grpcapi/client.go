package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls predict.v1.Predictor.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, params map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(params)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Geode(ctx context.Context, params map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Geode", params, opts...)
}

func (c *Client) Garbage(ctx context.Context, params map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Garbage", params, opts...)
}

func (c *Client) Weather(ctx context.Context, params map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Weather", params, opts...)
}

func (c *Client) WeatherRange(ctx context.Context, params map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "WeatherRange", params, opts...)
}

func (c *Client) NightEvent(ctx context.Context, params map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "NightEvent", params, opts...)
}

func (c *Client) Forecast(ctx context.Context, params map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Forecast", params, opts...)
}
