package enums

// ExpenseCategory values are title-cased because the admin dashboard shows them verbatim.
type ExpenseCategory string

const (
	ExpenseCategoryShipping  ExpenseCategory = "Shipping"
	ExpenseCategorySupplies  ExpenseCategory = "Supplies"
	ExpenseCategoryMarketing ExpenseCategory = "Marketing"
	ExpenseCategoryUtilities ExpenseCategory = "Utilities"
	ExpenseCategoryRent      ExpenseCategory = "Rent"
	ExpenseCategoryOther     ExpenseCategory = "Other"
)

var expenseCategories = []ExpenseCategory{
	ExpenseCategoryShipping,
	ExpenseCategorySupplies,
	ExpenseCategoryMarketing,
	ExpenseCategoryUtilities,
	ExpenseCategoryRent,
	ExpenseCategoryOther,
}

func (c ExpenseCategory) String() string { return string(c) }

func (c ExpenseCategory) IsValid() bool { return oneOf(c, expenseCategories) }

func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	return parseOneOf("expense category", value, expenseCategories)
}
