package enums

// ProductCategory drives fulfillment: pasabuy items are pre-orders bought abroad on the
// customer's behalf and need a deposit; onhand and sale items ship from stock.
type ProductCategory string

const (
	ProductCategoryPasabuy ProductCategory = "pasabuy"
	ProductCategoryOnhand  ProductCategory = "onhand"
	ProductCategorySale    ProductCategory = "sale"
)

var productCategories = []ProductCategory{ProductCategoryPasabuy, ProductCategoryOnhand, ProductCategorySale}

func (c ProductCategory) String() string { return string(c) }

func (c ProductCategory) IsValid() bool { return oneOf(c, productCategories) }

// RequiresDeposit reports whether an order containing this category starts in the deposit phase.
func (c ProductCategory) RequiresDeposit() bool {
	return c == ProductCategoryPasabuy
}

func ParseProductCategory(value string) (ProductCategory, error) {
	return parseOneOf("product category", value, productCategories)
}
