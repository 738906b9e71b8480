// Package tracking records product analytics events.
//
// Analytics are separate from operational telemetry: events here describe
// what a person did in the client ("Viewed Profile"), while platform/otel
// traces describe how the system behaved. OTelClient bridges the two by
// attaching analytics events to the active span.
package tracking

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Properties are event attributes.
type Properties map[string]any

// Client delivers analytics events.
type Client interface {
	Track(ctx context.Context, event string, props Properties)
}

// Discard drops every event.
type Discard struct{}

// Track does nothing.
func (Discard) Track(context.Context, string, Properties) {}

// Multi fans one event out to every client in order.
type Multi []Client

// Track forwards the event to each non-nil client.
func (m Multi) Track(ctx context.Context, event string, props Properties) {
	for _, c := range m {
		if c != nil {
			c.Track(ctx, event, props)
		}
	}
}

// LogClient writes events to a zap logger.
type LogClient struct {
	Logger *zap.Logger
}

// Track logs event at info level.
func (c LogClient) Track(_ context.Context, event string, props Properties) {
	if c.Logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(props)+1)
	fields = append(fields, zap.String("event", event))
	for k, v := range props {
		fields = append(fields, zap.Any(k, v))
	}
	c.Logger.Info("analytics event", fields...)
}

// OTelClient adds events to the span carried by ctx. Without a recording
// span the event is dropped.
type OTelClient struct{}

// Track adds event as a span event.
func (OTelClient) Track(ctx context.Context, event string, props Properties) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(props))
	for k, v := range props {
		attrs = append(attrs, toAttribute(k, v))
	}
	span.AddEvent(event, trace.WithAttributes(attrs...))
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

// MemoryClient keeps every event in memory.
type MemoryClient struct {
	mu     sync.Mutex
	events []string
	props  []Properties
}

// Track appends event and a copy of props.
func (c *MemoryClient) Track(_ context.Context, event string, props Properties) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	c.props = append(c.props, maps.Clone(props))
}

// Events returns every tracked event name in order.
func (c *MemoryClient) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

// Properties returns the properties of every tracked event in order.
func (c *MemoryClient) Properties() []Properties {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Properties(nil), c.props...)
}

var (
	_ Client = Discard{}
	_ Client = Multi(nil)
	_ Client = LogClient{}
	_ Client = OTelClient{}
	_ Client = (*MemoryClient)(nil)
)
