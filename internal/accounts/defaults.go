package accounts

import "github.com/libros-dev/libros/internal/model"

// DefaultChart returns the starting chart of accounts for a project type.
func DefaultChart(projectType string) []model.Account {
	switch projectType {
	case "personal":
		return personalChart()
	default:
		return businessChart()
	}
}

func businessChart() []model.Account {
	return []model.Account{
		{Code: "1101", Name: "Caja General", Type: model.AccountTypeAsset, CashEquivalent: true},
		{Code: "1102", Name: "Bancos", Type: model.AccountTypeAsset, CashEquivalent: true},
		{Code: "1103", Name: "Clientes", Type: model.AccountTypeAsset},
		{Code: "1104", Name: "IVA Crédito Fiscal", Type: model.AccountTypeAsset},
		{Code: "2101", Name: "Proveedores", Type: model.AccountTypeLiability},
		{Code: "2102", Name: "IVA Débito Fiscal", Type: model.AccountTypeLiability},
		{Code: "3101", Name: "Capital Social", Type: model.AccountTypeEquity},
		{Code: "4101", Name: "Ventas", Type: model.AccountTypeIncome},
		{Code: "5101", Name: "Compras", Type: model.AccountTypeExpense},
		{Code: "5102", Name: "Gastos Operativos", Type: model.AccountTypeExpense},
	}
}

func personalChart() []model.Account {
	return []model.Account{
		{Code: "1101", Name: "Caja", Type: model.AccountTypeAsset, CashEquivalent: true},
		{Code: "1102", Name: "Banco", Type: model.AccountTypeAsset, CashEquivalent: true},
		{Code: "3101", Name: "Patrimonio Personal", Type: model.AccountTypeEquity},
		{Code: "4101", Name: "Ingresos", Type: model.AccountTypeIncome},
		{Code: "5101", Name: "Gastos Personales", Type: model.AccountTypeExpense},
	}
}
