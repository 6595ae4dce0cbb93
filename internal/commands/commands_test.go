package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
)

func addSale(t *testing.T, dir, invoice, amount string) {
	t.Helper()
	_, err := runLibros(t, "sale", "add", "--dir", dir,
		"--date", "2024-05-01", "--customer", "Cliente Uno", "--invoice", invoice, "--amount", amount)
	require.NoError(t, err)
}

func addPurchase(t *testing.T, dir, invoice, amount string) {
	t.Helper()
	_, err := runLibros(t, "purchase", "add", "--dir", dir,
		"--date", "2024-05-02", "--supplier", "Proveedor SA", "--invoice", invoice, "--amount", amount,
		"--category", "servicio")
	require.NoError(t, err)
}

func TestSaleAdd(t *testing.T) {
	dir := initBooks(t)

	out, err := runLibros(t, "sale", "add", "--dir", dir,
		"--date", "2024-05-01", "--customer", "Cliente Uno", "--invoice", "001-001", "--amount", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "IVA 13.00")
	assert.Contains(t, out, "$113.00")

	txns := transactions(t, dir)
	require.Len(t, txns, 1)
	assert.Equal(t, model.KindSale, txns[0].Kind)
	assert.Equal(t, "113.00", txns[0].TotalAmount.StringFixed(2))
}

func TestSaleAdd_ValidationFailure(t *testing.T) {
	dir := initBooks(t)

	_, err := runLibros(t, "sale", "add", "--dir", dir,
		"--date", "2024-05-01", "--customer", "X", "--invoice", "AB", "--amount", "0")
	require.Error(t, err)

	var verrs journal.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, journal.FieldCounterparty)
	assert.Contains(t, verrs, journal.FieldInvoiceNumber)
	assert.Contains(t, verrs, journal.FieldBaseAmount)
	assert.Empty(t, transactions(t, dir))
}

func TestPurchase_AddEditDelete(t *testing.T) {
	dir := initBooks(t)
	addPurchase(t, dir, "100-1", "50")

	_, err := runLibros(t, "purchase", "add", "--dir", dir,
		"--date", "2024-05-03", "--supplier", "Otro", "--invoice", "100-1", "--amount", "10")
	require.Error(t, err, "purchase invoice numbers are unique")

	txns := transactions(t, dir)
	require.Len(t, txns, 1)
	id := txns[0].ID
	assert.Equal(t, model.CategoryService, txns[0].ExpenseCategory)

	out, err := runLibros(t, "purchase", "edit", id, "--dir", dir, "--amount", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated purchase 100-1")

	txns = transactions(t, dir)
	require.Len(t, txns, 1)
	assert.Equal(t, id, txns[0].ID)
	assert.Equal(t, "90.40", txns[0].TotalAmount.StringFixed(2))
	assert.Equal(t, "Proveedor SA", txns[0].Counterparty, "unchanged fields are kept")

	_, err = runLibros(t, "purchase", "delete", id, "--dir", dir)
	require.NoError(t, err)
	assert.Empty(t, transactions(t, dir))
}

func TestPurchase_ShortAndUpperCaseIDs(t *testing.T) {
	dir := initBooks(t)
	addPurchase(t, dir, "100-1", "50")
	full := transactions(t, dir)[0].ID
	short := full[:strings.IndexByte(full, '-')]

	out, err := runLibros(t, "purchase", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, short)
	assert.NotContains(t, out, full)

	_, err = runLibros(t, "purchase", "edit", short, "--dir", dir, "--amount", "80")
	require.NoError(t, err)
	assert.Equal(t, "90.40", transactions(t, dir)[0].TotalAmount.StringFixed(2))

	out, err = runLibros(t, "purchase", "delete", strings.ToUpper(full), "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted purchase "+full)
	assert.Empty(t, transactions(t, dir))
}

func TestPurchaseEdit_RejectsSale(t *testing.T) {
	dir := initBooks(t)
	addSale(t, dir, "001-001", "100")

	sale := transactions(t, dir)[0]
	_, err := runLibros(t, "purchase", "edit", sale.ID, "--dir", dir, "--amount", "5")
	require.ErrorIs(t, err, journal.ErrSaleNotEditable)
	_, err = runLibros(t, "purchase", "delete", sale.ID, "--dir", dir)
	require.ErrorIs(t, err, journal.ErrSaleNotEditable)
}

func TestBooksAndReports(t *testing.T) {
	dir := initBooks(t)
	addSale(t, dir, "001-001", "1000")
	addPurchase(t, dir, "500-1", "400")

	out, err := runLibros(t, "sale", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "001-001")
	assert.NotContains(t, out, "500-1")
	assert.Contains(t, out, "IVA 130.00")

	out, err = runLibros(t, "purchase", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Service")
	assert.Contains(t, out, "$452.00")

	out, err = runLibros(t, "dashboard", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "$1,130.00")
	assert.Contains(t, out, "$678.00")

	out, err = runLibros(t, "journal", "--dir", dir, "--kind", "compra")
	require.NoError(t, err)
	assert.Contains(t, out, "500-1")
	assert.NotContains(t, out, "001-001")
	assert.Contains(t, out, "1 shown")

	out, err = runLibros(t, "ledger", "1101", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingreso por venta 001-001")
	assert.Contains(t, out, "Pago por compra 500-1")
	assert.Contains(t, out, "678.00 Deudor")

	out, err = runLibros(t, "ledger", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Ventas")
	assert.NotContains(t, out, "not balanced")
}

func TestReports_WarnWhenChartLacksIncome(t *testing.T) {
	dir := initBooks(t)
	addSale(t, dir, "001-001", "100")
	_, err := runLibros(t, "account", "delete", "4101", "--dir", dir)
	require.NoError(t, err)

	out, err := runLibros(t, "dashboard", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "debits and credits differ")

	out, err = runLibros(t, "ledger", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Debits and credits differ by 113.00")
	assert.Contains(t, out, "1 transactions are not balanced")
}

func TestLedger_UnknownAccount(t *testing.T) {
	dir := initBooks(t)
	_, err := runLibros(t, "ledger", "9999", "--dir", dir)
	require.Error(t, err)
}

func TestProjects(t *testing.T) {
	dir := initBooks(t)

	out, err := runLibros(t, "project", "create", "Casa", "--dir", dir, "--type", "personal", "--use")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Casa")

	out, err = runLibros(t, "project", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Casa")
	assert.Contains(t, out, "Test Biz")

	out, err = runLibros(t, "account", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Patrimonio Personal", "new current project has the personal chart")

	_, err = runLibros(t, "project", "update", "Casa", "--dir", dir, "--status", "archivado")
	require.NoError(t, err)
	_, err = runLibros(t, "project", "update", "Casa", "--dir", dir, "--status", "borrado")
	require.Error(t, err)

	_, err = runLibros(t, "project", "delete", "Casa", "--dir", dir)
	require.NoError(t, err)
	_, err = runLibros(t, "dashboard", "--dir", dir)
	require.Error(t, err, "deleting the current project clears the selection")

	_, err = runLibros(t, "dashboard", "--dir", dir, "--project", "Test Biz")
	require.NoError(t, err)
}

func TestAccounts(t *testing.T) {
	dir := initBooks(t)

	out, err := runLibros(t, "account", "add", "1105", "Caja Chica", "--type", "activo", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Added account 1105 Caja Chica (Asset)")

	_, err = runLibros(t, "account", "add", "1105", "Otra", "--type", "Asset", "--dir", dir)
	require.Error(t, err)

	_, err = runLibros(t, "account", "update", "1105", "--name", "Caja Menor", "--cash=false", "--dir", dir)
	require.NoError(t, err)
	out, err = runLibros(t, "account", "list", "--dir", dir, "--type", "Asset")
	require.NoError(t, err)
	assert.Contains(t, out, "Caja Menor")

	_, err = runLibros(t, "account", "delete", "1105", "--dir", dir)
	require.NoError(t, err)
	out, err = runLibros(t, "account", "list", "--dir", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "Caja Menor")
}

func TestAccounts_ImportCSV(t *testing.T) {
	dir := initBooks(t)
	path := filepath.Join(t.TempDir(), "accounts.csv")
	csv := "code,name,type,cash_equivalent\n1101,Caja General,Asset,true\n1190,Caja Chica,Asset,true\n5190,Viaticos,Expense,false\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := runLibros(t, "account", "import", path, "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 of 3 accounts")

	out, err = runLibros(t, "account", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Caja Chica")
	assert.Contains(t, out, "Viaticos")

	out, err = runLibros(t, "account", "import", path, "--dir", dir, "--global")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 of 3 accounts")

	require.NoError(t, os.WriteFile(path, []byte("code,name,type,cash_equivalent\n1,X,Nope,false\n"), 0o644))
	_, err = runLibros(t, "account", "import", path, "--dir", dir)
	assert.Error(t, err)
}

func TestGlobalAccounts(t *testing.T) {
	dir := initBooks(t)

	_, err := runLibros(t, "account", "add", "9001", "Catalogo", "--type", "Expense", "--global", "--dir", dir)
	require.NoError(t, err)
	_, err = runLibros(t, "account", "update", "9001", "--type", "Income", "--global", "--dir", dir)
	require.Error(t, err, "global account types are immutable")

	out, err := runLibros(t, "account", "list", "--dir", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "Catalogo", "project listing excludes the catalog")
}

func TestImportExport(t *testing.T) {
	dir := initBooks(t)

	csv := journal.Header + "\n" +
		"2024-04-01,Sale,Cliente Uno,001-010,,200.00,26.00,226.00,\n" +
		"2024-04-02,Purchase,Proveedor SA,700-1,Insumos,50.00,,,Merchandise\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "abril.csv"), []byte(csv), 0o644))

	out, err := runLibros(t, "import", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "abril.csv: 2 created, 0 rejected")
	assert.Len(t, transactions(t, dir), 2)

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "abril.csv"))
	require.NoError(t, err, "imported file is moved to processed/")

	out, err = runLibros(t, "export", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 transactions")

	f, err := os.Open(filepath.Join(dir, "exports", "transactions.csv"))
	require.NoError(t, err)
	defer f.Close()
	cands, err := journal.ReadCandidates(f)
	require.NoError(t, err)
	assert.Len(t, cands, 2)
}

func TestImport_RejectsWholeFile(t *testing.T) {
	dir := initBooks(t)

	csv := journal.Header + "\n" +
		"2024-04-01,Sale,Cliente Uno,001-010,,200.00,,,\n" +
		"2024-04-02,Purchase,Proveedor SA,700-1,,50.00,,,\n" +
		"2024-04-03,Purchase,Proveedor SA,700-1,,60.00,,,\n"
	path := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := runLibros(t, "import", path, "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "row 4")
	assert.True(t, strings.Contains(out, "already registered"))
	assert.Empty(t, transactions(t, dir))
}

func TestImport_UnknownFormat(t *testing.T) {
	dir := initBooks(t)
	_, err := runLibros(t, "import", "--dir", dir, "--format", "xml")
	require.Error(t, err)
}
