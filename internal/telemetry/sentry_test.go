package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoDSN(t *testing.T) {
	shutdown, err := Init(Config{})
	require.NoError(t, err)
	shutdown()
}

func TestStartSpan_Attributes(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "TutorService.Answer", SpanAttributes{
		StudentID: "s-1",
		Topic:     "suma llevando",
		Intent:    "duda",
		Operation: "ask",
	})
	defer span.End()

	require.NotNil(t, span.inner)
	assert.Equal(t, "s-1", span.inner.Tags["student_id"])
	assert.Equal(t, "suma llevando", span.inner.Tags["topic"])
	assert.Equal(t, "duda", span.inner.Tags["intent"])
	assert.Equal(t, "ask", span.inner.Data["operation"])
	assert.Same(t, span.inner, sentry.SpanFromContext(ctx))

	_, child := StartSpan(ctx, "child", SpanAttributes{})
	defer child.End()
	assert.Equal(t, span.inner.SpanID, child.inner.ParentSpanID)
}

func TestSpan_SetError(t *testing.T) {
	_, span := StartSpan(context.Background(), "op", SpanAttributes{})
	span.SetError(errors.New("boom"))
	assert.Equal(t, sentry.SpanStatusInternalError, span.inner.Status)
	span.End()

	var empty Span
	empty.SetError(errors.New("boom"))
	empty.End()
	assert.NotNil(t, empty.Context())
}
