package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SubAction is the canonical representation of an action's sub-item.
type SubAction struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// SubTask is the legacy field-name view over the same sub-item data
// ("completed" instead of "done"). Conversions happen only through
// SubTasksFromSubActions and SubActionsFromSubTasks.
type SubTask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// SubTasksFromSubActions maps the canonical sub-items to the legacy view.
func SubTasksFromSubActions(subs []SubAction) []SubTask {
	if subs == nil {
		return nil
	}
	out := make([]SubTask, len(subs))
	for i, s := range subs {
		out[i] = SubTask{ID: s.ID, Text: s.Text, Completed: s.Done}
	}
	return out
}

// SubActionsFromSubTasks maps the legacy view back to the canonical
// representation.
func SubActionsFromSubTasks(tasks []SubTask) []SubAction {
	if tasks == nil {
		return nil
	}
	out := make([]SubAction, len(tasks))
	for i, t := range tasks {
		out[i] = SubAction{ID: t.ID, Text: t.Text, Done: t.Completed}
	}
	return out
}

// Action is a task entry. It may be standalone or belong to a container
// identified by Parent. Done and Completed duplicate one completion state for
// legacy readers; write paths set both from a single boolean.
//
// ActionOrder is the 1-based sibling order within the container scope. Zero
// means unassigned: create paths replace it with max(scope)+1.
type Action struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	Done        bool        `json:"done"`
	Completed   bool        `json:"completed"`
	Priority    int         `json:"priority"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	SubActions  []SubAction `json:"sub_actions,omitempty"`
	Parent      ParentRef   `json:"parent,omitempty"`
	ActionOrder int         `json:"action_order"`
	CategoryID  string      `json:"category_id,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Starred     bool        `json:"starred"`
	Hidden      bool        `json:"hidden"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SubTasks returns the legacy view of the action's sub-items.
func (a *Action) SubTasks() []SubTask {
	return SubTasksFromSubActions(a.SubActions)
}

// Validate checks the action's fields.
func (a Action) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Title, validation.Required),
		validation.Field(&a.Priority, validation.Min(0)),
		validation.Field(&a.Parent),
	)
}

// ActionPatch carries a partial update for an Action. Nil fields are left
// unchanged. Done sets both completion columns. If both SubActions and
// SubTasks are supplied, SubActions wins. Parent changes go through
// MoveAction/UnlinkActionFromPath, not through a patch.
type ActionPatch struct {
	Title       *string
	Body        *string
	Done        *bool
	Priority    *int
	DueDate     *time.Time
	SubActions  *[]SubAction
	SubTasks    *[]SubTask
	ActionOrder *int
	CategoryID  *string
	Tags        *[]string
	Starred     *bool
	Hidden      *bool
}
