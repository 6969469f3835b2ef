package enums

// ShippingMethod is the courier recorded when an order ships.
type ShippingMethod string

const (
	ShippingMethodLalamove ShippingMethod = "lalamove"
	ShippingMethodShopee   ShippingMethod = "shopee"
	ShippingMethodStandard ShippingMethod = "standard"
	ShippingMethodExpress  ShippingMethod = "express"
	ShippingMethodPickup   ShippingMethod = "pickup"
)

var shippingMethods = []ShippingMethod{
	ShippingMethodLalamove,
	ShippingMethodShopee,
	ShippingMethodStandard,
	ShippingMethodExpress,
	ShippingMethodPickup,
}

func (m ShippingMethod) String() string { return string(m) }

func (m ShippingMethod) IsValid() bool { return oneOf(m, shippingMethods) }

func ParseShippingMethod(value string) (ShippingMethod, error) {
	return parseOneOf("shipping method", value, shippingMethods)
}
