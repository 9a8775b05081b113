package message_test

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/skydb/sky/message"
	"github.com/skydb/sky/value"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env := message.Envelope{
		Name:     "add_event",
		Database: "app",
		Table:    "users",
		Data: []value.MapEntry{
			{Key: "object_id", Value: value.Uint(100)},
			{Key: "data", Value: value.Map([]value.MapEntry{
				{Key: "gender", Value: value.String("m")},
			})},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, message.WriteEnvelope(&buf, env))

	got, err := message.ReadEnvelope(bufio.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, env.Name, got.Name)
	require.Equal(t, env.Database, got.Database)
	require.Equal(t, env.Table, got.Table)
	require.Equal(t, env.Data, got.Data)
}

func TestReadEnvelopeEOFOnCleanClose(t *testing.T) {
	r := bufio.NewReader(bytes.NewReader(nil))

	_, err := message.ReadEnvelope(r)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadEnvelopeRejectsMissingName(t *testing.T) {
	var buf bytes.Buffer
	v := value.Map([]value.MapEntry{{Key: "database", Value: value.String("app")}})
	buf.Write(value.Write(nil, v))

	_, err := message.ReadEnvelope(bufio.NewReader(&buf))
	require.Error(t, err)
}

func TestReplyEncoding(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, message.WriteReply(&buf, message.OK(value.MapEntry{Key: "count", Value: value.Uint(3)})))

	v, n, err := value.Read(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)

	status, ok := value.Field(v.Map, "status")
	require.True(t, ok)
	require.Equal(t, "ok", status.Str)

	count, ok := value.Field(v.Map, "count")
	require.True(t, ok)
	require.EqualValues(t, 3, count.Uint64())
}

func TestMultipleEnvelopesReadSequentially(t *testing.T) {
	var buf bytes.Buffer

	e1 := message.Envelope{Name: "get_actions", Database: "app", Table: "users"}
	e2 := message.Envelope{Name: "get_properties", Database: "app", Table: "users"}

	require.NoError(t, message.WriteEnvelope(&buf, e1))
	require.NoError(t, message.WriteEnvelope(&buf, e2))

	r := bufio.NewReader(&buf)

	got1, err := message.ReadEnvelope(r)
	require.NoError(t, err)
	require.Equal(t, "get_actions", got1.Name)

	got2, err := message.ReadEnvelope(r)
	require.NoError(t, err)
	require.Equal(t, "get_properties", got2.Name)
}
