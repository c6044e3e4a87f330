package git

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Compile-time check that TracedClient implements Client.
var _ Client = (*TracedClient)(nil)

// TracedClient decorates a Client with OpenTelemetry spans around every
// repository fetch. With a no-op tracer the overhead is negligible, so the
// app always wires this decorator.
type TracedClient struct {
	inner  Client
	tracer trace.Tracer
}

// NewTracedClient wraps inner with span instrumentation.
func NewTracedClient(inner Client, tracer trace.Tracer) *TracedClient {
	return &TracedClient{inner: inner, tracer: tracer}
}

func (t *TracedClient) ListCommits(ctx context.Context, limit int) ([]Commit, error) {
	ctx, span := t.tracer.Start(ctx, "git.list_commits",
		trace.WithAttributes(attribute.Int("git.limit", limit)))
	defer span.End()

	commits, err := t.inner.ListCommits(ctx, limit)
	recordResult(span, err)
	span.SetAttributes(attribute.Int("git.commits", len(commits)))
	return commits, err
}

func (t *TracedClient) StatAgainst(ctx context.Context, ref string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "git.stat_against",
		trace.WithAttributes(attribute.String("git.ref", ref)))
	defer span.End()

	out, err := t.inner.StatAgainst(ctx, ref)
	recordResult(span, err)
	return out, err
}

func (t *TracedClient) DiffOf(ctx context.Context, ref, path string) (string, error) {
	ctx, span := t.tracer.Start(ctx, "git.diff_of",
		trace.WithAttributes(
			attribute.String("git.ref", ref),
			attribute.String("git.path", path),
		))
	defer span.End()

	out, err := t.inner.DiffOf(ctx, ref, path)
	recordResult(span, err)
	return out, err
}

func (t *TracedClient) WorktreeDirty(ctx context.Context) (bool, error) {
	ctx, span := t.tracer.Start(ctx, "git.worktree_dirty")
	defer span.End()

	dirty, err := t.inner.WorktreeDirty(ctx)
	recordResult(span, err)
	return dirty, err
}

func recordResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
