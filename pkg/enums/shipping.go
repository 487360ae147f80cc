package enums

import "fmt"

// ShippingMethod is the delivery option chosen at checkout.
type ShippingMethod string

const (
	ShippingMethodStandard    ShippingMethod = "standard"
	ShippingMethodLocalPickup ShippingMethod = "local_pickup"
)

// PaymentMethodLocalPickup is the payment-method marker that implies pickup
// when no shipping method is supplied.
const PaymentMethodLocalPickup = "local_pickup"

func (m ShippingMethod) String() string {
	return string(m)
}

func (m ShippingMethod) IsValid() bool {
	return m == ShippingMethodStandard || m == ShippingMethodLocalPickup
}

// ResolveShippingMethod applies the checkout defaulting rules: an explicit
// method wins, a local-pickup payment implies pickup, everything else ships
// standard.
func ResolveShippingMethod(shippingMethod, paymentMethod string) ShippingMethod {
	if shippingMethod != "" {
		return ShippingMethod(shippingMethod)
	}
	if paymentMethod == PaymentMethodLocalPickup {
		return ShippingMethodLocalPickup
	}
	return ShippingMethodStandard
}

// ShippingTier is the coarse cost bucket assigned to a product in place of a
// carrier-rate lookup.
type ShippingTier string

const (
	ShippingTierT2     ShippingTier = "T2"
	ShippingTierT4     ShippingTier = "T4"
	ShippingTierT6     ShippingTier = "T6"
	ShippingTierT8Plus ShippingTier = "T8PLUS"
)

var shippingTierCosts = map[ShippingTier]float64{
	ShippingTierT2:     15,
	ShippingTierT4:     20,
	ShippingTierT6:     25,
	ShippingTierT8Plus: 35,
}

func (t ShippingTier) String() string {
	return string(t)
}

func (t ShippingTier) IsValid() bool {
	_, ok := shippingTierCosts[t]
	return ok
}

// Cost returns the flat shipping cost for the tier, zero for unknown tiers.
func (t ShippingTier) Cost() float64 {
	return shippingTierCosts[t]
}

func ParseShippingTier(value string) (ShippingTier, error) {
	tier := ShippingTier(value)
	if !tier.IsValid() {
		return "", fmt.Errorf("invalid shipping tier %q", value)
	}
	return tier, nil
}
