package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/store"
)

// countingRepo counts writes.
type countingRepo struct {
	*store.Memory
	writes int
}

func (c *countingRepo) CreateTransaction(ctx context.Context, t model.Transaction) error {
	c.writes++
	return c.Memory.CreateTransaction(ctx, t)
}

func (c *countingRepo) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	c.writes++
	return c.Memory.UpdateTransaction(ctx, t)
}

func (c *countingRepo) DeleteTransaction(ctx context.Context, projectID, id string) error {
	c.writes++
	return c.Memory.DeleteTransaction(ctx, projectID, id)
}

func TestEditorCreate(t *testing.T) {
	svc := newTestService(t)
	ed := NewEditor(svc)
	assert.Equal(t, StateNew, ed.State())
	assert.Equal(t, model.KindPurchase, ed.Draft().Kind)

	ed.SetDraft(validPurchase())
	txn, err := ed.Submit(ctxT(t))
	require.NoError(t, err)
	assert.Equal(t, model.KindPurchase, txn.Kind)
	assert.Equal(t, StateNew, ed.State())
	assert.Empty(t, ed.Draft().InvoiceNumber, "form cleared after submit")
}

func TestEditorEditSubmit(t *testing.T) {
	svc := newTestService(t)
	orig, err := svc.Create(ctxT(t), validPurchase())
	require.NoError(t, err)

	ed := NewEditor(svc)
	require.NoError(t, ed.StartEdit(orig.ID))
	assert.Equal(t, StateEditing, ed.State())
	assert.Equal(t, orig.ID, ed.EditingID())
	assert.Equal(t, orig.InvoiceNumber, ed.Draft().InvoiceNumber)

	draft := ed.Draft()
	draft.BaseAmount = "80"
	ed.SetDraft(draft)
	updated, err := ed.Submit(ctxT(t))
	require.NoError(t, err)

	assert.Equal(t, orig.ID, updated.ID, "updated in place")
	assert.Equal(t, "90.40", updated.TotalAmount.StringFixed(2))
	assert.Equal(t, StateNew, ed.State())
	assert.Empty(t, ed.EditingID())
	assert.Len(t, svc.Snapshot(), 1)
}

func TestEditorCancelMakesNoWrite(t *testing.T) {
	repo := &countingRepo{Memory: store.NewMemory()}
	svc := newServiceOn(t, repo)
	orig, err := svc.Create(ctxT(t), validPurchase())
	require.NoError(t, err)
	require.Equal(t, 1, repo.writes)

	ed := NewEditor(svc)
	require.NoError(t, ed.StartEdit(orig.ID))
	draft := ed.Draft()
	draft.Counterparty = "Cambiado"
	ed.SetDraft(draft)
	ed.Cancel()

	assert.Equal(t, StateNew, ed.State())
	assert.Empty(t, ed.EditingID())
	assert.Equal(t, 1, repo.writes)

	got, ok := svc.Get(orig.ID)
	require.True(t, ok)
	assert.Equal(t, orig.Counterparty, got.Counterparty)
}

func TestEditorSubmitValidationKeepsState(t *testing.T) {
	svc := newTestService(t)
	orig, err := svc.Create(ctxT(t), validPurchase())
	require.NoError(t, err)

	ed := NewEditor(svc)
	require.NoError(t, ed.StartEdit(orig.ID))
	draft := ed.Draft()
	draft.BaseAmount = "-1"
	ed.SetDraft(draft)

	_, err = ed.Submit(ctxT(t))
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, StateEditing, ed.State())
	assert.Equal(t, "-1", ed.Draft().BaseAmount)
}

func TestEditorRejectsSales(t *testing.T) {
	svc := newTestService(t)
	sale, err := svc.Create(ctxT(t), validSale())
	require.NoError(t, err)

	ed := NewEditor(svc)
	assert.ErrorIs(t, ed.StartEdit(sale.ID), ErrSaleNotEditable)
	assert.ErrorIs(t, ed.StartEdit("missing"), store.ErrNotFound)
	assert.Equal(t, StateNew, ed.State())
}

func TestEditorStateString(t *testing.T) {
	assert.Equal(t, "new", StateNew.String())
	assert.Equal(t, "editing", StateEditing.String())
	assert.Equal(t, "EditorState(7)", EditorState(7).String())
}
