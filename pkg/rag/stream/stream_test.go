package stream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-qna-be/pkg/rag"
)

type recorderConn struct {
	events []Event
	fail   bool
}

func (r *recorderConn) SendJSON(v interface{}) error {
	if r.fail {
		return errors.New("connection closed")
	}
	r.events = append(r.events, v.(Event))
	return nil
}

func TestEmitterOrdering(t *testing.T) {
	conn := &recorderConn{}
	e := NewEmitter(conn)

	require.NoError(t, e.Start())
	require.NoError(t, e.Chunk("The"))
	require.NoError(t, e.Chunk("cat"))
	require.NoError(t, e.Chunk("sat"))
	require.NoError(t, e.End())

	require.Len(t, conn.events, 5)
	assert.Equal(t, TypeStart, conn.events[0].Type)
	assert.Equal(t, "The", conn.events[1].Message)
	assert.Equal(t, "cat", conn.events[2].Message)
	assert.Equal(t, "sat", conn.events[3].Message)
	assert.Equal(t, TypeEnd, conn.events[4].Type)
}

func TestEmitterRejectsOutOfOrder(t *testing.T) {
	e := NewEmitter(&recorderConn{})

	err := e.Chunk("early")
	assert.ErrorIs(t, err, rag.ErrStreamDelivery)

	require.NoError(t, e.Start())
	err = e.Start()
	assert.ErrorIs(t, err, rag.ErrStreamDelivery)

	require.NoError(t, e.End())
	err = e.Chunk("late")
	assert.ErrorIs(t, err, rag.ErrStreamDelivery)
}

func TestEmitterWrapsTransportFailure(t *testing.T) {
	e := NewEmitter(&recorderConn{fail: true})

	err := e.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, rag.ErrStreamDelivery)

	// Stream is closed after a transport failure.
	err = e.Chunk("x")
	assert.ErrorIs(t, err, rag.ErrStreamDelivery)
}

func TestEmitterErrorTerminates(t *testing.T) {
	conn := &recorderConn{}
	e := NewEmitter(conn)

	require.NoError(t, e.Start())
	require.NoError(t, e.Error("boom"))

	// No end frame may follow an error.
	err := e.End()
	assert.ErrorIs(t, err, rag.ErrStreamDelivery)

	require.Len(t, conn.events, 2)
	assert.Equal(t, TypeError, conn.events[1].Type)
	assert.Equal(t, "boom", conn.events[1].Message)
}
