// Package progress tracks and renders per-installable execution status.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Status is the state of a tracked task.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
	StatusSkipped Status = "SKIPPED"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusSkipped
}

// Task tracks one installable through the run. Tasks are never removed; the
// full collection backs the final report.
type Task struct {
	ID          string
	Description string
	Status      Status
	Result      string
	Err         error
	StartTime   time.Time
	EndTime     time.Time
}

var (
	styleHeader  = lipgloss.NewStyle().Bold(true)
	stylePending = lipgloss.NewStyle().Faint(true)
	styleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleSkipped = lipgloss.NewStyle().Faint(true)
)

// Manager owns the task collection and renders progress to an injected sink.
// Rendering mode is selected by whether the sink is an interactive terminal:
// a live-refreshing table when it is, line-based markers when it is not.
type Manager struct {
	mu          sync.Mutex
	tasks       map[string]*Task
	order       []string
	sink        io.Writer
	interactive bool
	startTime   time.Time
	drawnLines  int
}

// NewManager creates a manager writing to sink, auto-detecting whether sink is
// an interactive terminal.
func NewManager(sink io.Writer) *Manager {
	interactive := false
	if f, ok := sink.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return NewManagerWithMode(sink, interactive)
}

// NewManagerWithMode creates a manager with an explicit rendering mode.
func NewManagerWithMode(sink io.Writer, interactive bool) *Manager {
	return &Manager{
		tasks:       make(map[string]*Task),
		sink:        sink,
		interactive: interactive,
		startTime:   time.Now(),
	}
}

// Add registers a task in PENDING state. Adding an existing id is a no-op.
func (m *Manager) Add(id, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tasks[id]; exists {
		return
	}
	m.tasks[id] = &Task{ID: id, Description: description, Status: StatusPending}
	m.order = append(m.order, id)

	if m.interactive {
		m.redrawLocked()
	}
}

// Step marks the task RUNNING and returns a guard whose Finish transitions the
// task to its terminal state.
func (m *Manager) Step(id string) *Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task, ok := m.tasks[id]; ok && !task.Status.Terminal() {
		task.Status = StatusRunning
		task.StartTime = time.Now()
		m.renderLocked(task)
	}
	return &Step{manager: m, id: id}
}

// Skip marks a pending task SKIPPED (condition not met).
func (m *Manager) Skip(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok || task.Status.Terminal() {
		return
	}
	task.Status = StatusSkipped
	task.Result = "condition not met"
	task.EndTime = time.Now()
	m.renderLocked(task)
}

// Abort marks a still-pending task SKIPPED with a note that it was never
// attempted. Used when a run halts before reaching the task.
func (m *Manager) Abort(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok || task.Status.Terminal() {
		return
	}
	task.Status = StatusSkipped
	task.Result = "not attempted, run halted"
	task.EndTime = time.Now()
	m.renderLocked(task)
}

// Step scopes one task's execution: created on entry (RUNNING), finished on
// exit (SUCCESS or FAILED).
type Step struct {
	manager *Manager
	id      string
	done    bool
}

// Finish transitions the task to SUCCESS when err is nil, FAILED otherwise.
// Finishing twice is a no-op.
func (s *Step) Finish(err error) {
	if s.done {
		return
	}
	s.done = true

	s.manager.mu.Lock()
	defer s.manager.mu.Unlock()

	task, ok := s.manager.tasks[s.id]
	if !ok || task.Status.Terminal() {
		return
	}

	task.EndTime = time.Now()
	if err != nil {
		task.Status = StatusFailed
		task.Err = err
		task.Result = err.Error()
	} else {
		task.Status = StatusSuccess
		task.Result = "ok"
	}
	s.manager.renderLocked(task)
}

// Tasks returns a snapshot of all tasks in insertion order.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Task, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.tasks[id])
	}
	return out
}

// Counts returns the number of succeeded, failed, and skipped tasks.
func (m *Manager) Counts() (succeeded, failed, skipped int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, task := range m.tasks {
		switch task.Status {
		case StatusSuccess:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return
}

// renderLocked emits a status change in the active mode.
func (m *Manager) renderLocked(task *Task) {
	if m.interactive {
		m.redrawLocked()
		return
	}

	switch task.Status {
	case StatusRunning:
		fmt.Fprintf(m.sink, "RUNNING %s  %s\n", task.ID, task.Description)
	case StatusSuccess:
		fmt.Fprintf(m.sink, "OK      %s (%s)\n", task.ID, duration(task))
	case StatusFailed:
		fmt.Fprintf(m.sink, "FAILED  %s: %v\n", task.ID, task.Err)
	case StatusSkipped:
		fmt.Fprintf(m.sink, "SKIPPED %s (%s)\n", task.ID, task.Result)
	}
}

// redrawLocked repaints the live table in place.
func (m *Manager) redrawLocked() {
	if m.drawnLines > 0 {
		fmt.Fprintf(m.sink, "\x1b[%dA\x1b[J", m.drawnLines)
	}

	idWidth := 2
	for _, id := range m.order {
		if len(id) > idWidth {
			idWidth = len(id)
		}
	}

	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("%-*s  %-8s  %s", idWidth, "ID", "STATUS", "DESCRIPTION")))
	b.WriteString("\n")
	for _, id := range m.order {
		task := m.tasks[id]
		b.WriteString(fmt.Sprintf("%-*s  %s  %s\n",
			idWidth, task.ID,
			statusStyle(task.Status).Render(fmt.Sprintf("%-8s", task.Status)),
			task.Description))
	}

	fmt.Fprint(m.sink, b.String())
	m.drawnLines = len(m.order) + 1
}

func statusStyle(status Status) lipgloss.Style {
	switch status {
	case StatusRunning:
		return styleRunning
	case StatusSuccess:
		return styleSuccess
	case StatusFailed:
		return styleFailed
	case StatusSkipped:
		return styleSkipped
	default:
		return stylePending
	}
}

// Summary prints the final report: counts, elapsed time, and failure details.
func (m *Manager) Summary() {
	succeeded, failed, skipped := m.Counts()

	m.mu.Lock()
	defer m.mu.Unlock()

	elapsed := time.Since(m.startTime).Round(time.Millisecond)

	fmt.Fprintln(m.sink)
	fmt.Fprintln(m.sink, strings.Repeat("─", 60))

	if failed > 0 {
		fmt.Fprintf(m.sink, "Run completed with errors in %s\n", elapsed)
		fmt.Fprintf(m.sink, "  %d succeeded, %d failed, %d skipped\n", succeeded, failed, skipped)

		fmt.Fprintln(m.sink, "\nFailed installables:")
		for _, id := range m.order {
			task := m.tasks[id]
			if task.Status != StatusFailed {
				continue
			}
			fmt.Fprintf(m.sink, "  ✗ %s", task.ID)
			if task.Err != nil {
				fmt.Fprintf(m.sink, ": %v", task.Err)
			}
			fmt.Fprintln(m.sink)
		}
	} else {
		fmt.Fprintf(m.sink, "Run completed successfully in %s\n", elapsed)
		fmt.Fprintf(m.sink, "  %d succeeded, %d skipped\n", succeeded, skipped)
	}
}

func duration(task *Task) time.Duration {
	if task.StartTime.IsZero() || task.EndTime.IsZero() {
		return 0
	}
	return task.EndTime.Sub(task.StartTime).Round(time.Millisecond)
}
