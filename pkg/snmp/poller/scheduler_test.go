package poller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsnet/unet/pkg/models"
	"github.com/opsnet/unet/pkg/snmp"
	"github.com/opsnet/unet/pkg/snmp/poller"
)

func startScheduler(t *testing.T, poll poller.PollFunc) (*poller.Scheduler, *poller.Handle, context.CancelFunc) {
	t.Helper()
	s := poller.NewScheduler(poll, 4, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	closed := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(closed)
	}()
	return s, poller.NewHandle(s, closed), cancel
}

func TestScheduler_ExecutesDueTaskAndEmitsResult(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	poll := func(ctx context.Context, task models.PollingTask) (map[string]snmp.SnmpValue, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return map[string]snmp.SnmpValue{"1.0": snmp.Integer(1)}, nil
	}

	s, h, cancel := startScheduler(t, poll)
	defer cancel()

	require.NoError(t, h.AddTask(models.PollingTask{
		ID: "t1", NodeID: "n1", TargetAddress: "10.0.0.1", OIDs: []string{"1.0"},
		Interval: time.Hour, Enabled: true,
	}))

	select {
	case res := <-s.Results():
		assert.Equal(t, "t1", res.TaskID)
		assert.True(t, res.Outcome.Success)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for polling result")
	}
}

func TestScheduler_FailureIncrementsConsecutiveFailures(t *testing.T) {
	poll := func(ctx context.Context, task models.PollingTask) (map[string]snmp.SnmpValue, error) {
		return nil, errors.New("unreachable")
	}
	s, h, cancel := startScheduler(t, poll)
	defer cancel()

	require.NoError(t, h.AddTask(models.PollingTask{
		ID: "t1", NodeID: "n1", TargetAddress: "10.0.0.1", OIDs: []string{"1.0"},
		Interval: time.Hour, Enabled: true,
	}))

	select {
	case res := <-s.Results():
		assert.False(t, res.Outcome.Success)
		assert.Equal(t, 1, res.Outcome.ConsecutiveFailures)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for polling result")
	}
}

func TestScheduler_DisabledTaskNeverRuns(t *testing.T) {
	var called int32
	var mu sync.Mutex
	poll := func(ctx context.Context, task models.PollingTask) (map[string]snmp.SnmpValue, error) {
		mu.Lock()
		called++
		mu.Unlock()
		return nil, nil
	}
	_, h, cancel := startScheduler(t, poll)
	defer cancel()

	require.NoError(t, h.AddTask(models.PollingTask{
		ID: "t1", NodeID: "n1", TargetAddress: "10.0.0.1", OIDs: []string{"1.0"},
		Interval: time.Hour, Enabled: false,
	}))

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, called)
}

func TestHandle_GetTaskStatus_UnknownTaskErrors(t *testing.T) {
	poll := func(ctx context.Context, task models.PollingTask) (map[string]snmp.SnmpValue, error) {
		return nil, nil
	}
	_, h, cancel := startScheduler(t, poll)
	defer cancel()

	_, err := h.GetTaskStatus("missing")
	require.Error(t, err)
	var notFound *poller.TaskNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestHandle_ListTasks(t *testing.T) {
	poll := func(ctx context.Context, task models.PollingTask) (map[string]snmp.SnmpValue, error) {
		return nil, nil
	}
	_, h, cancel := startScheduler(t, poll)
	defer cancel()

	require.NoError(t, h.AddTask(models.PollingTask{ID: "t1", NodeID: "n1", TargetAddress: "x", OIDs: []string{"1.0"}, Interval: time.Hour}))
	require.NoError(t, h.AddTask(models.PollingTask{ID: "t2", NodeID: "n2", TargetAddress: "y", OIDs: []string{"1.0"}, Interval: time.Hour}))

	tasks, err := h.ListTasks()
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestHandle_Shutdown_ClosesResultsChannel(t *testing.T) {
	poll := func(ctx context.Context, task models.PollingTask) (map[string]snmp.SnmpValue, error) {
		return nil, nil
	}
	s, h, cancel := startScheduler(t, poll)
	defer cancel()

	require.NoError(t, h.Shutdown())

	select {
	case _, ok := <-s.Results():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("results channel was not closed after shutdown")
	}
}
