package engine

import (
	"context"

	"github.com/avi3tal/blueprint/internal/graph"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (e *Engine) passSpan(ctx context.Context, p *pass) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "blueprint.pass", trace.WithAttributes(
		attribute.String("blueprint.graph.id", p.graph.ID()),
		attribute.String("blueprint.pass.id", p.id),
		attribute.String("blueprint.pass.start", p.start),
	))
}

func (e *Engine) nodeSpan(ctx context.Context, p *pass, node graph.Node) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "blueprint.node."+node.TypeID, trace.WithAttributes(
		attribute.String("blueprint.pass.id", p.id),
		attribute.String("blueprint.node.id", node.ID),
		attribute.String("blueprint.node.type", node.TypeID),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
