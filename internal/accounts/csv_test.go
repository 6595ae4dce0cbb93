package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libros-dev/libros/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{Code: "1101", Name: "Caja General", Type: model.AccountTypeAsset, CashEquivalent: true},
		{Code: "4101", Name: "Ventas", Type: model.AccountTypeIncome},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts, got)
}

func TestReadSpanishTypes(t *testing.T) {
	input := "code,name,type,cash_equivalent\n" +
		"1102,Banco Agrícola,Activo,\n" +
		"2101,Proveedores,pasivo,false\n" +
		"1199,Fondo,Activo,true\n"

	got, err := ReadAccounts(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, model.AccountTypeAsset, got[0].Type)
	assert.True(t, got[0].CashEquivalent, "blank flag defaults from the name")
	assert.Equal(t, model.AccountTypeLiability, got[1].Type)
	assert.False(t, got[1].CashEquivalent)
	assert.True(t, got[2].CashEquivalent)
}

func TestReadEmpty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad type", "code,name,type,cash_equivalent\n1101,Caja,Cosa,\n"},
		{"bad flag", "code,name,type,cash_equivalent\n1101,Caja,Asset,maybe\n"},
		{"wrong field count", "code,name,type,cash_equivalent\n1101,Caja,Asset\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
