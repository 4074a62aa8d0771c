package domain

// TaskStatus enumerates kanban columns.
type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "TODO"
	TaskStatusDoing TaskStatus = "DOING"
	TaskStatusDone  TaskStatus = "DONE"
)

// TaskStatuses lists the columns in board order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusDoing, TaskStatusDone}
}

// Known reports whether the status belongs to the closed set.
func (s TaskStatus) Known() bool {
	for _, candidate := range TaskStatuses() {
		if s == candidate {
			return true
		}
	}
	return false
}

// Task is an internal work item assigned between staff.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	AssignedTo  string     `json:"assignedTo"`
	AssignedBy  string     `json:"assignedBy"`
	CreatedAt   string     `json:"createdAt"`
}

// Key implements store.Record.
func (t Task) Key() string { return t.ID }
