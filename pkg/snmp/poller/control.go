package poller

import (
	"time"

	"github.com/opsnet/unet/pkg/models"
)

type commandKind int

const (
	cmdAddTask commandKind = iota
	cmdRemoveTask
	cmdUpdateTask
	cmdEnableTask
	cmdGetTaskStatus
	cmdListTasks
	cmdShutdown
)

type command struct {
	kind commandKind

	task   models.PollingTask
	taskID string
	enable bool

	replyErr    chan error
	replyStatus chan taskStatusReply
	replyList   chan []models.PollingTask
}

// taskStatusReply answers GetTaskStatus.
type taskStatusReply struct {
	task models.PollingTask
	err  error
}

// handleCommand applies one control message against the live task set.
// Returns true if the scheduler should stop (Shutdown).
func (s *Scheduler) handleCommand(cmd command) bool {
	switch cmd.kind {
	case cmdAddTask:
		s.mu.Lock()
		s.tasks[cmd.task.ID] = &taskState{task: cmd.task, nextFire: time.Now()}
		s.mu.Unlock()
		cmd.replyErr <- nil

	case cmdRemoveTask:
		s.mu.Lock()
		delete(s.tasks, cmd.taskID)
		s.mu.Unlock()
		cmd.replyErr <- nil

	case cmdUpdateTask:
		s.mu.Lock()
		if st, ok := s.tasks[cmd.task.ID]; ok {
			st.task = cmd.task
		} else {
			s.tasks[cmd.task.ID] = &taskState{task: cmd.task, nextFire: time.Now()}
		}
		s.mu.Unlock()
		cmd.replyErr <- nil

	case cmdEnableTask:
		s.mu.Lock()
		if st, ok := s.tasks[cmd.taskID]; ok {
			st.task.Enabled = cmd.enable
		}
		s.mu.Unlock()
		cmd.replyErr <- nil

	case cmdGetTaskStatus:
		s.mu.Lock()
		st, ok := s.tasks[cmd.taskID]
		var reply taskStatusReply
		if ok {
			reply = taskStatusReply{task: st.task}
		} else {
			reply = taskStatusReply{err: &TaskNotFoundError{TaskID: cmd.taskID}}
		}
		s.mu.Unlock()
		cmd.replyStatus <- reply

	case cmdListTasks:
		s.mu.Lock()
		out := make([]models.PollingTask, 0, len(s.tasks))
		for _, st := range s.tasks {
			out = append(out, st.task)
		}
		s.mu.Unlock()
		cmd.replyList <- out

	case cmdShutdown:
		cmd.replyErr <- nil
		return true
	}
	return false
}

// TaskNotFoundError is returned by GetTaskStatus for an unknown task id.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string { return "poller: task not found: " + e.TaskID }
