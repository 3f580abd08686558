package enums

type PaymentGateway string

const (
	PaymentGatewayStripe PaymentGateway = "STRIPE"
	PaymentGatewayPaypal PaymentGateway = "PAYPAL"
	PaymentGatewayCash   PaymentGateway = "CASH"
)

var validPaymentGateways = []PaymentGateway{
	PaymentGatewayStripe,
	PaymentGatewayPaypal,
	PaymentGatewayCash,
}

func (g PaymentGateway) String() string {
	return string(g)
}

func (g PaymentGateway) IsValid() bool {
	return contains(validPaymentGateways, g)
}

// ParsePaymentGateway accepts any casing ("stripe", "Stripe", "STRIPE").
func ParsePaymentGateway(value string) (PaymentGateway, error) {
	return parse("payment gateway", validPaymentGateways, value)
}
