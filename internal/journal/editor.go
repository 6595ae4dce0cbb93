package journal

import (
	"context"
	"fmt"

	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/store"
)

// EditorState is the state of the purchase form.
type EditorState int

const (
	// StateNew is an empty form that creates a purchase on submit.
	StateNew EditorState = iota
	// StateEditing is a form pre-filled from an existing purchase.
	StateEditing
)

func (s EditorState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateEditing:
		return "editing"
	}
	return fmt.Sprintf("EditorState(%d)", int(s))
}

// Editor drives the purchase form. Edits stay in the draft until Submit;
// Cancel discards them without touching the store.
type Editor struct {
	svc       *Service
	state     EditorState
	editingID string
	draft     Candidate
}

// NewEditor returns an editor in StateNew with an empty purchase draft.
func NewEditor(svc *Service) *Editor {
	e := &Editor{svc: svc}
	e.reset()
	return e
}

// State returns the current state.
func (e *Editor) State() EditorState {
	return e.state
}

// EditingID returns the ID of the purchase being edited, or "" in StateNew.
func (e *Editor) EditingID() string {
	return e.editingID
}

// Draft returns the current form contents.
func (e *Editor) Draft() Candidate {
	return e.draft
}

// SetDraft replaces the form contents. The kind is always Purchase.
func (e *Editor) SetDraft(c Candidate) {
	c.Kind = model.KindPurchase
	c.ExcludeID = e.editingID
	e.draft = c
}

// StartEdit loads a purchase into the form and enters StateEditing.
func (e *Editor) StartEdit(transactionID string) error {
	t, ok := e.svc.Get(transactionID)
	if !ok {
		return fmt.Errorf("transaction %s: %w", transactionID, store.ErrNotFound)
	}
	if t.Kind != model.KindPurchase {
		return ErrSaleNotEditable
	}
	e.state = StateEditing
	e.editingID = t.ID
	e.draft = CandidateFrom(t)
	return nil
}

// Submit creates or updates the purchase in the draft. On success the editor
// returns to StateNew; on failure it keeps its state and draft.
func (e *Editor) Submit(ctx context.Context) (model.Transaction, error) {
	var (
		t   model.Transaction
		err error
	)
	switch e.state {
	case StateEditing:
		t, err = e.svc.Update(ctx, e.editingID, e.draft)
	default:
		t, err = e.svc.Create(ctx, e.draft)
	}
	if err != nil {
		return model.Transaction{}, err
	}
	e.reset()
	return t, nil
}

// Cancel discards the draft and returns to StateNew.
func (e *Editor) Cancel() {
	e.reset()
}

func (e *Editor) reset() {
	e.state = StateNew
	e.editingID = ""
	e.draft = Candidate{Kind: model.KindPurchase, ExpenseCategory: string(model.CategoryMerchandise)}
}
