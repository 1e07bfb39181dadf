package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Backend = (*Mock)(nil)

func TestMockCannedResponse(t *testing.T) {
	m := NewMock("test")
	m.AddResponse("tell me a joke", "why did the gopher cross the road?")

	resp, err := m.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "tell me a joke"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "why did the gopher cross the road?", resp.Text)

	resp, err = m.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "something else"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: something else", resp.Text)
}

func TestMockRecordsRequests(t *testing.T) {
	m := NewMock("test")

	_, err := m.Complete(context.Background(), Request{System: "sys", Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "sys", reqs[0].System)
}

func TestMockFailureMode(t *testing.T) {
	m := NewMock("test")
	m.Fail(ErrUnavailable)

	_, err := m.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	assert.ErrorIs(t, err, ErrUnavailable)

	m.Fail(nil)
	_, err = m.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	assert.NoError(t, err)
}

func TestMockCancelledContext(t *testing.T) {
	m := NewMock("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Complete(ctx, Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.True(t, errors.Is(err, context.Canceled))
}
