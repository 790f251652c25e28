package menusync

import (
	"context"
	"strconv"

	"embruns/internal/models"
)

// ItemRef addresses one item in a category for a server call. It is either
// Identified or Positional; nothing else implements it.
type ItemRef interface {
	// PathSegment is the value placed in the item URL.
	PathSegment() string
	isItemRef()
}

// Identified targets an item by its stable id.
type Identified struct {
	ID string
}

func (r Identified) PathSegment() string { return r.ID }
func (Identified) isItemRef()            {}

// Positional targets an item by its index in the category as last loaded.
// The index goes stale as soon as anyone else reorders, adds or deletes
// items in that category; the server cannot tell.
type Positional struct {
	Index int
}

func (r Positional) PathSegment() string { return strconv.Itoa(r.Index) }
func (Positional) isItemRef()            {}

// RefFor picks the reference for item at index: its id when it has one,
// otherwise its position.
func RefFor(item models.MenuItem, index int) ItemRef {
	if item.HasID() {
		return Identified{ID: item.ID}
	}
	return Positional{Index: index}
}

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt. Used for non-interactive deletes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })
