package enums

import "fmt"

// FulfillmentOption is the session-scoped choice between delivery and
// self-collection. The zero value means the user has not chosen yet.
type FulfillmentOption string

const (
	FulfillmentUnset      FulfillmentOption = ""
	FulfillmentDelivery   FulfillmentOption = "delivery"
	FulfillmentCollection FulfillmentOption = "collection"
)

// String implements fmt.Stringer.
func (f FulfillmentOption) String() string {
	return string(f)
}

// IsSet reports whether the user has made a choice.
func (f FulfillmentOption) IsSet() bool {
	return f == FulfillmentDelivery || f == FulfillmentCollection
}

// ParseFulfillmentOption converts raw input into a FulfillmentOption.
func ParseFulfillmentOption(value string) (FulfillmentOption, error) {
	switch FulfillmentOption(value) {
	case FulfillmentDelivery:
		return FulfillmentDelivery, nil
	case FulfillmentCollection:
		return FulfillmentCollection, nil
	default:
		return FulfillmentUnset, fmt.Errorf("invalid fulfillment option %q", value)
	}
}

// DeliveryOption is the persisted orders.delivery_option flag. Historical
// rows store Yes/No rather than the fulfillment enum.
type DeliveryOption string

const (
	DeliveryOptionYes DeliveryOption = "Yes"
	DeliveryOptionNo  DeliveryOption = "No"
)

// String implements fmt.Stringer.
func (d DeliveryOption) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryOption.
func (d DeliveryOption) IsValid() bool {
	return d == DeliveryOptionYes || d == DeliveryOptionNo
}

// DeliveryOptionFromFulfillment maps the session choice onto the
// persisted flag.
func DeliveryOptionFromFulfillment(f FulfillmentOption) DeliveryOption {
	if f == FulfillmentDelivery {
		return DeliveryOptionYes
	}
	return DeliveryOptionNo
}
