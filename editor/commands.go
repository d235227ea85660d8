package editor

import (
	"go.uber.org/zap"

	"mesh-editor/internal/logger"
	"mesh-editor/scene"
)

// Command represents an undoable editor action
type Command interface {
	Execute()
	Undo()
	Description() string
}

// noop is implemented by commands that may turn out to change nothing.
type noop interface {
	Noop() bool
}

// History manages undo/redo stacks
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
	log       *zap.Logger
}

// NewHistory creates a new history with the given max undo depth
func NewHistory(maxDepth int) *History {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
		log:       logger.Named("history"),
	}
}

// Do executes a command and pushes it to the undo stack
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.Push(cmd)
}

// Push records a command whose effect has already been applied. Commands
// that report no change are dropped.
func (h *History) Push(cmd Command) bool {
	if n, ok := cmd.(noop); ok && n.Noop() {
		return false
	}
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	// Clear redo stack on new action
	h.redoStack = h.redoStack[:0]
	h.log.Debug("recorded", zap.String("action", cmd.Description()), zap.Int("depth", len(h.undoStack)))
	return true
}

// Undo reverts the last action
func (h *History) Undo() bool {
	if len(h.undoStack) == 0 {
		return false
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	h.log.Debug("undo", zap.String("action", cmd.Description()), zap.Int("depth", len(h.undoStack)))
	return true
}

// Redo reapplies the last undone action
func (h *History) Redo() bool {
	if len(h.redoStack) == 0 {
		return false
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	h.log.Debug("redo", zap.String("action", cmd.Description()), zap.Int("depth", len(h.undoStack)))
	return true
}

// CanUndo returns whether there are actions to undo
func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }

// CanRedo returns whether there are actions to redo
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Depth returns the number of undoable actions.
func (h *History) Depth() int { return len(h.undoStack) }

// Clear wipes all undo/redo history
func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// SnapshotCommand swaps the scene between two captured states.
type SnapshotCommand struct {
	Manager *scene.Manager
	Before  scene.Snapshot
	After   scene.Snapshot
	desc    string
}

func NewSnapshotCommand(m *scene.Manager, before, after scene.Snapshot, desc string) *SnapshotCommand {
	return &SnapshotCommand{Manager: m, Before: before, After: after, desc: desc}
}

func (c *SnapshotCommand) Execute()            { c.Manager.Restore(c.After) }
func (c *SnapshotCommand) Undo()               { c.Manager.Restore(c.Before) }
func (c *SnapshotCommand) Description() string { return c.desc }

// Noop reports whether both snapshots are identical.
func (c *SnapshotCommand) Noop() bool { return c.Before.Equal(c.After) }
