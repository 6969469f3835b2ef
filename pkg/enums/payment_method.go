package enums

// PaymentMethod records how the customer says they paid; nothing is verified against a processor.
type PaymentMethod string

const (
	PaymentMethodGCash  PaymentMethod = "gcash"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCredit PaymentMethod = "credit"
)

var paymentMethods = []PaymentMethod{PaymentMethodGCash, PaymentMethodBank, PaymentMethodCredit}

func (m PaymentMethod) String() string { return string(m) }

func (m PaymentMethod) IsValid() bool { return oneOf(m, paymentMethods) }

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parseOneOf("payment method", value, paymentMethods)
}
