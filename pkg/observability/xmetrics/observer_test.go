package xmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nilObserver struct{}

func (nilObserver) Start(context.Context, SpanOptions) (context.Context, Span) {
	return nil, nil
}

func TestStart(t *testing.T) {
	ctx, span := Start(context.Background(), nil, SpanOptions{})
	assert.NotNil(t, ctx)
	assert.Equal(t, NoopSpan{}, span)

	//nolint:staticcheck // 故意传入 nil context
	ctx, span = Start(nil, NoopObserver{}, SpanOptions{})
	assert.NotNil(t, ctx)
	span.End(Result{})

	parent := context.WithValue(context.Background(), struct{}{}, "v")
	ctx, span = Start(parent, nilObserver{}, SpanOptions{})
	assert.Equal(t, parent, ctx)
	assert.Equal(t, NoopSpan{}, span)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "Internal", KindInternal.String())
	assert.Equal(t, "Client", KindClient.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
