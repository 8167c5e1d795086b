package poller

import (
	"errors"

	"github.com/opsnet/unet/pkg/models"
)

// ErrSchedulerClosed is returned by every Handle method once the
// scheduler's command channel has been closed (Shutdown completed).
var ErrSchedulerClosed = errors.New("poller: scheduler is shut down")

// ErrReplyDropped is returned when a request/reply command's reply
// channel never receives a response, e.g. the scheduler stopped mid-call.
var ErrReplyDropped = errors.New("poller: reply channel dropped before response")

// Handle is the external control surface over a running Scheduler: every
// method sends one command and waits for its acknowledgement.
type Handle struct {
	commands chan<- command
	closed   chan struct{}
}

// NewHandle wraps a Scheduler's command channel. closed should be closed
// by the caller once Run returns, so Handle methods can detect shutdown
// instead of blocking forever on a channel nobody drains.
func NewHandle(s *Scheduler, closed chan struct{}) *Handle {
	return &Handle{commands: s.commands, closed: closed}
}

func (h *Handle) send(cmd command) bool {
	select {
	case h.commands <- cmd:
		return true
	case <-h.closed:
		return false
	}
}

func (h *Handle) AddTask(task models.PollingTask) error {
	reply := make(chan error, 1)
	if !h.send(command{kind: cmdAddTask, task: task, replyErr: reply}) {
		return ErrSchedulerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-h.closed:
		return ErrReplyDropped
	}
}

func (h *Handle) RemoveTask(taskID string) error {
	reply := make(chan error, 1)
	if !h.send(command{kind: cmdRemoveTask, taskID: taskID, replyErr: reply}) {
		return ErrSchedulerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-h.closed:
		return ErrReplyDropped
	}
}

func (h *Handle) UpdateTask(task models.PollingTask) error {
	reply := make(chan error, 1)
	if !h.send(command{kind: cmdUpdateTask, task: task, replyErr: reply}) {
		return ErrSchedulerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-h.closed:
		return ErrReplyDropped
	}
}

func (h *Handle) EnableTask(taskID string, enable bool) error {
	reply := make(chan error, 1)
	if !h.send(command{kind: cmdEnableTask, taskID: taskID, enable: enable, replyErr: reply}) {
		return ErrSchedulerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-h.closed:
		return ErrReplyDropped
	}
}

func (h *Handle) GetTaskStatus(taskID string) (models.PollingTask, error) {
	reply := make(chan taskStatusReply, 1)
	if !h.send(command{kind: cmdGetTaskStatus, taskID: taskID, replyStatus: reply}) {
		return models.PollingTask{}, ErrSchedulerClosed
	}
	select {
	case r := <-reply:
		return r.task, r.err
	case <-h.closed:
		return models.PollingTask{}, ErrReplyDropped
	}
}

func (h *Handle) ListTasks() ([]models.PollingTask, error) {
	reply := make(chan []models.PollingTask, 1)
	if !h.send(command{kind: cmdListTasks, replyList: reply}) {
		return nil, ErrSchedulerClosed
	}
	select {
	case tasks := <-reply:
		return tasks, nil
	case <-h.closed:
		return nil, ErrReplyDropped
	}
}

// Shutdown requests the scheduler drain in-flight tasks and stop. It
// waits for the scheduler's acknowledgement that Shutdown was processed;
// the caller should still wait on Run's return (or closed) to know the
// results channel has been closed.
func (h *Handle) Shutdown() error {
	reply := make(chan error, 1)
	if !h.send(command{kind: cmdShutdown, replyErr: reply}) {
		return ErrSchedulerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-h.closed:
		return nil
	}
}
