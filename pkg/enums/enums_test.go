package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		status, err := ParseOrderStatus(value)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", value, err)
		}
		if !status.IsValid() {
			t.Fatalf("parsed status %q should be valid", value)
		}
	}

	if _, err := ParseOrderStatus("returned"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParsePaymentStatus(t *testing.T) {
	t.Parallel()

	if _, err := ParsePaymentStatus("paid"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParsePaymentStatus("chargeback"); err == nil {
		t.Fatal("expected error for unknown payment status")
	}
	if PaymentStatus("chargeback").IsValid() {
		t.Fatal("unknown payment status should not validate")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"credit_card", "paypal", "bank_transfer"} {
		method, err := ParsePaymentMethod(value)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", value, err)
		}
		if method.String() != value {
			t.Fatalf("round trip mismatch for %q", value)
		}
	}

	if _, err := ParsePaymentMethod("bitcoin"); err == nil {
		t.Fatal("expected error for unsupported method")
	}
}
