package types

import "errors"

// Vault defines backend-agnostic access to the entry store. Callers attach to
// a backend, use the typed repository methods, and detach when done.
//
// Conventions shared by every repository method:
//
//   - Create* assigns the id and both timestamps in place and returns an
//     error only on validation or storage failure.
//   - Get*ByID returns (nil, nil) when the entity does not exist; not-found
//     is never an error.
//   - GetAll* orders newest-created-first; Spark and Action listings exclude
//     hidden entries.
//   - Update* merges only the patch's non-nil fields over the stored row,
//     always refreshes UpdatedAt, and returns (false, nil) when the entity
//     does not exist.
//   - Delete* returns (false, nil) when the entity is already gone; deletes
//     are idempotent.
type Vault interface {
	// Attach connects to the backend described by config, creating the data
	// directory and running schema migration as needed. Returns
	// ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach, all
	// operations return ErrDetached.
	Detach() error

	// Notes.
	CreateNote(n *Note) error
	GetNoteByID(id string) (*Note, error)
	GetAllNotes() ([]*Note, error)
	UpdateNote(id string, patch NotePatch) (bool, error)
	DeleteNote(id string) (bool, error)

	// Sparks.
	CreateSpark(s *Spark) error
	GetSparkByID(id string) (*Spark, error)
	GetAllSparks() ([]*Spark, error)
	GetUnlinkedSparks() ([]*Spark, error)
	UpdateSpark(id string, patch SparkPatch) (bool, error)
	DeleteSpark(id string) (bool, error)

	// Actions.
	CreateAction(a *Action) error
	GetActionByID(id string) (*Action, error)
	GetAllActions() ([]*Action, error)
	GetActionsByParent(parent ParentRef) ([]*Action, error)
	GetActionsWithDueDate() ([]*Action, error)
	UpdateAction(id string, patch ActionPatch) (bool, error)
	DeleteAction(id string) (bool, error)

	// Action re-parenting. MoveAction assigns order max(scope)+1 when order
	// is nil. LinkActionToPath is the path-scoped form of MoveAction.
	// UnlinkActionFromPath returns the action to standalone status.
	MoveAction(actionID string, parent ParentRef, order *int) (bool, error)
	LinkActionToPath(actionID, pathID string, order *int) (bool, error)
	UnlinkActionFromPath(actionID string) (bool, error)

	// Loops. Loop items are owned children; UpdateLoop reconciles a non-nil
	// desired item list, DeleteLoop cascades to items.
	CreateLoop(l *Loop) error
	GetLoopByID(id string) (*Loop, error)
	GetAllLoops() ([]*Loop, error)
	UpdateLoop(id string, patch LoopPatch) (bool, error)
	DeleteLoop(id string) (bool, error)

	// Paths and milestones. UpdatePath reconciles a non-nil desired
	// milestone list (and each milestone's non-nil action list) by id.
	// DeleteMilestone re-parents the milestone's actions to the owning path.
	// DeletePath removes the path and its milestones and returns all their
	// actions to standalone status.
	CreatePath(p *Path) error
	GetPathByID(id string) (*Path, error)
	GetAllPaths() ([]*Path, error)
	GetMilestonesByPath(pathID string) ([]*Milestone, error)
	GetPathActions(pathID, milestoneID string) ([]*Action, error)
	UpdatePath(id string, patch PathPatch) (bool, error)
	DeletePath(id string) (bool, error)
	DeleteMilestone(id string) (bool, error)
	ReorderMilestones(pathID string, orderedIDs []string) (bool, error)

	// Sagas.
	CreateSaga(s *Saga) error
	GetSagaByID(id string) (*Saga, error)
	GetAllSagas() ([]*Saga, error)
	UpdateSaga(id string, patch SagaPatch) (bool, error)
	DeleteSaga(id string) (bool, error)

	// Categories.
	CreateCategory(c *Category) error
	GetCategoryByID(id string) (*Category, error)
	GetAllCategories() ([]*Category, error)
	UpdateCategory(id string, patch CategoryPatch) (bool, error)
	DeleteCategory(id string) (bool, error)
}

// Vault lifecycle and argument errors.
var (
	ErrDetached        = errors.New("vault is detached")
	ErrAlreadyAttached = errors.New("vault is already attached")
	ErrInvalidID       = errors.New("invalid id")
)
