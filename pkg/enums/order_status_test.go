package enums

import "testing"

func TestOrderStatusDerivedFlags(t *testing.T) {
	tests := []struct {
		status      OrderStatus
		depositPaid bool
		fullPaid    bool
		terminal    bool
	}{
		{OrderStatusPending, false, false, false},
		{OrderStatusReadyForPayment, false, false, false},
		{OrderStatusDepositPaid, true, false, false},
		{OrderStatusFullyPaid, true, true, false},
		{OrderStatusShipped, true, true, false},
		{OrderStatusCompleted, true, true, true},
		{OrderStatusCancelled, false, false, true},
	}

	for _, tt := range tests {
		if got := tt.status.DepositPaid(); got != tt.depositPaid {
			t.Fatalf("%s DepositPaid()=%v want %v", tt.status, got, tt.depositPaid)
		}
		if got := tt.status.FullPaid(); got != tt.fullPaid {
			t.Fatalf("%s FullPaid()=%v want %v", tt.status, got, tt.fullPaid)
		}
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Fatalf("%s IsTerminal()=%v want %v", tt.status, got, tt.terminal)
		}
		if !tt.status.IsValid() {
			t.Fatalf("%s should be valid", tt.status)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("ready_for_payment")
	if err != nil || got != OrderStatusReadyForPayment {
		t.Fatalf("unexpected parse result %q, %v", got, err)
	}
	if _, err := ParseOrderStatus("refunded"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParseEnumsRejectUnknown(t *testing.T) {
	if _, err := ParseProductCategory("preorder"); err == nil {
		t.Fatal("expected unknown category error")
	}
	if _, err := ParseShippingMethod("drone"); err == nil {
		t.Fatal("expected unknown shipping method error")
	}
	if _, err := ParsePaymentMethod("cash"); err == nil || err.Error() != `invalid payment method "cash"` {
		t.Fatalf("expected unknown payment method error, got %v", err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Fatal("expected unknown role error")
	}
	if _, err := ParseExpenseCategory("Food"); err == nil {
		t.Fatal("expected unknown expense category error")
	}
	if !ProductCategoryPasabuy.RequiresDeposit() || ProductCategorySale.RequiresDeposit() {
		t.Fatal("only pasabuy requires a deposit")
	}
	if !RoleSecond.IsStaff() || RoleCustomer.IsStaff() {
		t.Fatal("unexpected staff classification")
	}
}
