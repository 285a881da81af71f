package scan

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mattfenwick/scan-utils/pkg/command"
	"github.com/mattfenwick/scan-utils/pkg/connector"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(fake *fakeConnector) (*Client, *bytes.Buffer) {
	out := &bytes.Buffer{}
	client := NewClient(fake)
	client.Out = out
	client.PollInterval = time.Millisecond
	return client, out
}

func TestSubmitTracksCurrentID(t *testing.T) {
	client, _ := newTestClient(newFakeConnector(1))
	assert.Equal(t, connector.NoScanID, client.CurrentID)

	first, err := client.Submit(context.Background(), "first", command.NewSequence().Log("a"))
	require.NoError(t, err)
	assert.Equal(t, first, client.CurrentID)

	second, err := client.Submit(context.Background(), "second", command.NewSequence().Log("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, client.CurrentID)
}

func TestSubmitSendsFlattenedCommands(t *testing.T) {
	fake := newFakeConnector(1)
	client, _ := newTestClient(fake)

	seq := command.NewSequence().Log("a").Add(command.NewSequence().Log("b"))
	_, err := client.Submit(context.Background(), "", seq)
	require.NoError(t, err)

	require.Len(t, fake.submissions, 1)
	assert.Equal(t, "", fake.submissions[0].Name)
	assert.Equal(t, seq.GetCommands(), fake.submissions[0].Commands)
}

func TestWaitUntilDoneStopsAtFirstDone(t *testing.T) {
	fake := newFakeConnector(3)
	client, out := newTestClient(fake)

	id, err := client.Submit(context.Background(), "scan", command.NewSequence().Log("a"))
	require.NoError(t, err)

	info, err := client.WaitUntilDone(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, info.IsDone())
	assert.Equal(t, 3, fake.pollCount(id))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 3)

	// nothing keeps polling in the background
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, fake.pollCount(id))
}

func TestWaitUntilDoneRejectsNonPositivePollInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		fake := newFakeConnector(3)
		client, _ := newTestClient(fake)
		client.PollInterval = interval

		id, err := client.Submit(context.Background(), "scan", command.NewSequence().Log("a"))
		require.NoError(t, err)

		_, err = client.WaitUntilDone(context.Background(), id)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "poll interval must be positive")
		assert.Equal(t, 0, fake.pollCount(id))
	}
}

func TestWaitUntilDoneDefaultsToCurrentScan(t *testing.T) {
	fake := newFakeConnector(1)
	client, _ := newTestClient(fake)

	first, err := client.Submit(context.Background(), "first", command.NewSequence())
	require.NoError(t, err)
	second, err := client.Submit(context.Background(), "second", command.NewSequence())
	require.NoError(t, err)

	info, err := client.WaitUntilDone(context.Background(), connector.NoScanID)
	require.NoError(t, err)
	assert.Equal(t, second, info.ID)
	assert.Equal(t, 1, fake.pollCount(second))
	assert.Equal(t, 0, fake.pollCount(first))
}

func TestWaitUntilDonePropagatesErrors(t *testing.T) {
	fake := newFakeConnector(5)
	fake.infoErr = errUnreachable
	client, _ := newTestClient(fake)

	_, err := client.WaitUntilDone(context.Background(), 7)
	assert.True(t, errors.Is(err, errUnreachable))
}

func TestWaitUntilDoneHonoursContext(t *testing.T) {
	fake := newFakeConnector(1_000_000)
	client, _ := newTestClient(fake)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	info, err := client.WaitUntilDone(ctx, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	require.NotNil(t, info)
	assert.False(t, info.IsDone())
}

func TestClientString(t *testing.T) {
	fake := newFakeConnector(1)
	client, _ := newTestClient(fake)
	assert.Equal(t, "Scan client, connected to fake scan server", client.String())

	fake.infoErr = errUnreachable
	assert.Contains(t, client.String(), "unavailable")
}
