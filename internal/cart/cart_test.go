package cart

import (
	"testing"

	"sibubur/terminal/internal/domain"
)

var (
	kopi  = domain.Product{ID: 1, Name: "Kopi Susu", Price: 10000}
	bubur = domain.Product{ID: 2, Name: "Bubur Ayam", Price: 15000}
	telur = domain.ProductAddon{ID: 7, Name: "Telur", Price: 2000}
)

func TestAddProductAggregatesQuantity(t *testing.T) {
	d := NewDraft(1)
	for i := 0; i < 3; i++ {
		d.AddProduct(kopi)
	}
	lines := d.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected a single aggregated line, got %d", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", lines[0].Quantity)
	}

	d.AddProduct(bubur)
	if len(d.Lines()) != 2 {
		t.Fatalf("distinct products get their own line")
	}
}

func TestChangeQuantityClampsAtOne(t *testing.T) {
	d := NewDraft(1)
	d.AddProduct(kopi)

	if !d.ChangeQuantity(kopi.ID, -5) {
		t.Fatalf("expected the line to be found")
	}
	lines := d.Lines()
	if lines[0].Quantity != 1 {
		t.Fatalf("quantity must clamp at one, got %d", lines[0].Quantity)
	}
	if len(lines) != 1 {
		t.Fatalf("decrementing must never remove the line")
	}

	if d.ChangeQuantity(999, 1) {
		t.Fatalf("unknown product must report false")
	}
}

func TestRemoveLine(t *testing.T) {
	d := NewDraft(1)
	d.AddProduct(kopi)
	d.AddProduct(bubur)

	if !d.RemoveLine(kopi.ID) {
		t.Fatalf("expected removal to succeed")
	}
	lines := d.Lines()
	if len(lines) != 1 || lines[0].ProductID != bubur.ID {
		t.Fatalf("unexpected lines after removal: %+v", lines)
	}
}

func TestTotalsIncludeAddonsPerLineUnit(t *testing.T) {
	d := NewDraft(1)
	d.AddProduct(kopi)
	d.ChangeQuantity(kopi.ID, 1) // quantity 2
	if !d.AddAddon(kopi.ID, telur) {
		t.Fatalf("expected addon to attach")
	}

	// 10000*2 + 2000*1*2
	totals := d.ComputeTotals()
	if totals.Subtotal != 24000 {
		t.Fatalf("expected subtotal 24000, got %v", totals.Subtotal)
	}
	if totals.Total != totals.Subtotal {
		t.Fatalf("total must equal subtotal")
	}
}

func TestAddonLifecycle(t *testing.T) {
	d := NewDraft(1)
	d.AddProduct(kopi)

	d.AddAddon(kopi.ID, telur)
	d.AddAddon(kopi.ID, telur)
	lines := d.Lines()
	if len(lines[0].Addons) != 1 || lines[0].Addons[0].Quantity != 2 {
		t.Fatalf("addon must aggregate, got %+v", lines[0].Addons)
	}

	d.RemoveAddon(kopi.ID, telur.ID)
	if d.Lines()[0].Addons[0].Quantity != 1 {
		t.Fatalf("expected addon quantity 1 after decrement")
	}
	d.RemoveAddon(kopi.ID, telur.ID)
	if len(d.Lines()[0].Addons) != 0 {
		t.Fatalf("addon at zero must be pruned")
	}
}

func TestOrderRequestShape(t *testing.T) {
	d := NewDraft(3)
	d.CustomerName = "Pak Dedi"
	d.AddProduct(kopi)
	d.AddAddon(kopi.ID, telur)

	req := d.OrderRequest()
	if req.StoreID != 3 || req.CustomerName != "Pak Dedi" {
		t.Fatalf("unexpected header fields: %+v", req)
	}
	if len(req.Items) != 1 || req.Items[0].ProductID != kopi.ID {
		t.Fatalf("unexpected items: %+v", req.Items)
	}
	if len(req.Items[0].Addons) != 1 || req.Items[0].Addons[0].Price != telur.Price {
		t.Fatalf("addon price must carry into the payload: %+v", req.Items[0].Addons)
	}
}

func TestSubmitGuard(t *testing.T) {
	d := NewDraft(1)
	if !d.TryBeginSubmit() {
		t.Fatalf("first submit must acquire the guard")
	}
	if d.TryBeginSubmit() {
		t.Fatalf("second submit must be rejected while in flight")
	}
	d.EndSubmit()
	if !d.TryBeginSubmit() {
		t.Fatalf("guard must release after EndSubmit")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	d := r.Create(1)
	if d.ID == "" {
		t.Fatalf("draft must get an ID")
	}
	got, ok := r.Get(d.ID)
	if !ok || got != d {
		t.Fatalf("expected the same draft back")
	}
	r.Discard(d.ID)
	if _, ok := r.Get(d.ID); ok {
		t.Fatalf("discarded draft must be gone")
	}
}
