package payment

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"20000", 20000},
		{"Rp 20.000", 20.000},
		{"1,500.50", 1500.50},
		{"", 0},
		{"abc", 0},
		{"12abc34", 1234},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.raw); got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestValidateTender(t *testing.T) {
	if v := ValidateTender(20000, "15000"); v.OK {
		t.Fatalf("insufficient tender must be invalid")
	}
	if v := ValidateTender(20000, "20000"); !v.OK || v.Amount != 20000 {
		t.Fatalf("exact tender must be valid, got %+v", v)
	}
	if v := ValidateTender(20000, "25000"); !v.OK || v.Amount != 25000 {
		t.Fatalf("over-tender must be valid, got %+v", v)
	}
	if v := ValidateTender(20000, ""); v.OK || v.Reason == "" {
		t.Fatalf("empty tender must be invalid with a reason, got %+v", v)
	}
	if v := ValidateTender(20000, "abc"); v.OK {
		t.Fatalf("garbage tender must be invalid")
	}
	// The rule is amount >= total, nothing more.
	if v := ValidateTender(0, ""); !v.OK {
		t.Fatalf("zero tender against a zero total must pass, got %+v", v)
	}
	if v := ValidateTender(0, "5000"); !v.OK || v.Amount != 5000 {
		t.Fatalf("over-tender against a zero total must pass, got %+v", v)
	}
}

func TestComputeChange(t *testing.T) {
	if got := ComputeChange(20000, 25000); got != 5000 {
		t.Fatalf("expected change 5000, got %v", got)
	}
	if got := ComputeChange(20000, 20000); got != 0 {
		t.Fatalf("expected zero change, got %v", got)
	}
	if got := ComputeChange(20000, 15000); got != 0 {
		t.Fatalf("change must never go negative, got %v", got)
	}
}

func TestCanSubmit(t *testing.T) {
	valid := Validation{OK: true, Amount: 20000}
	if !CanSubmit(valid, true) {
		t.Fatalf("valid tender with a method must submit")
	}
	if CanSubmit(valid, false) {
		t.Fatalf("missing payment method must block submit")
	}
	if CanSubmit(Validation{}, true) {
		t.Fatalf("invalid tender must block submit")
	}
}
