package enums

import "testing"

func TestParseProductSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    ProductSize
		wantErr bool
	}{
		{input: "S", want: ProductSizeS},
		{input: "m", want: ProductSizeM},
		{input: " L ", want: ProductSizeL},
		{input: "xl", want: ProductSizeXL},
		{input: "XXL", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseProductSize(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseProductSize(%q): expected error, got %q", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseProductSize(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseProductSize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestFulfillmentOption(t *testing.T) {
	t.Parallel()

	if FulfillmentUnset.IsSet() {
		t.Error("expected unset fulfillment to report not set")
	}
	if !FulfillmentDelivery.IsSet() || !FulfillmentCollection.IsSet() {
		t.Error("expected delivery and collection to report set")
	}

	if _, err := ParseFulfillmentOption("pickup"); err == nil {
		t.Error("expected error for unknown fulfillment option")
	}

	if got := DeliveryOptionFromFulfillment(FulfillmentDelivery); got != DeliveryOptionYes {
		t.Errorf("expected Yes for delivery, got %q", got)
	}
	if got := DeliveryOptionFromFulfillment(FulfillmentCollection); got != DeliveryOptionNo {
		t.Errorf("expected No for collection, got %q", got)
	}
	if got := DeliveryOptionFromFulfillment(FulfillmentUnset); got != DeliveryOptionNo {
		t.Errorf("expected No for unset, got %q", got)
	}
}
