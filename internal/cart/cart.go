package cart

import (
	"sync"

	"github.com/google/uuid"

	"sibubur/terminal/internal/domain"
)

// AddonLine is one addon attached to a cart line, with its own quantity
// per unit of the parent line.
type AddonLine struct {
	AddonID   int     `json:"addonId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

// Line is one product in the cart. Adding the same product again bumps the
// quantity rather than creating a second line.
type Line struct {
	ProductID int         `json:"productId"`
	Name      string      `json:"name"`
	UnitPrice float64     `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
	Addons    []AddonLine `json:"addons,omitempty"`
}

// Totals is the computed bill for a draft.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
}

// Draft is an in-progress order being assembled at the terminal. It is
// safe for concurrent use; the facade serves it from multiple requests.
type Draft struct {
	ID           string
	StoreID      int
	CustomerName string

	mu         sync.Mutex
	lines      []Line
	submitting bool
}

func NewDraft(storeID int) *Draft {
	return &Draft{ID: uuid.NewString(), StoreID: storeID}
}

// AddProduct puts one unit of a product into the cart, aggregating onto an
// existing line when the product is already there.
func (d *Draft) AddProduct(product domain.Product) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		if d.lines[i].ProductID == product.ID {
			d.lines[i].Quantity++
			return
		}
	}
	d.lines = append(d.lines, Line{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
	})
}

// ChangeQuantity adjusts a line's quantity by delta, clamping at one.
// Removing a line is an explicit separate action, never a side effect of
// decrementing.
func (d *Draft) ChangeQuantity(productID int, delta int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		if d.lines[i].ProductID == productID {
			q := d.lines[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			d.lines[i].Quantity = q
			return true
		}
	}
	return false
}

// RemoveLine drops a product from the cart entirely.
func (d *Draft) RemoveLine(productID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		if d.lines[i].ProductID == productID {
			d.lines = append(d.lines[:i], d.lines[i+1:]...)
			return true
		}
	}
	return false
}

// AddAddon attaches one unit of an addon to a line, bumping the quantity
// when the addon is already attached.
func (d *Draft) AddAddon(productID int, addon domain.ProductAddon) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		if d.lines[i].ProductID != productID {
			continue
		}
		for j := range d.lines[i].Addons {
			if d.lines[i].Addons[j].AddonID == addon.ID {
				d.lines[i].Addons[j].Quantity++
				return true
			}
		}
		d.lines[i].Addons = append(d.lines[i].Addons, AddonLine{
			AddonID:   addon.ID,
			Name:      addon.Name,
			UnitPrice: addon.Price,
			Quantity:  1,
		})
		return true
	}
	return false
}

// RemoveAddon decrements an addon and prunes it when the quantity hits
// zero.
func (d *Draft) RemoveAddon(productID int, addonID int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.lines {
		if d.lines[i].ProductID != productID {
			continue
		}
		for j := range d.lines[i].Addons {
			if d.lines[i].Addons[j].AddonID == addonID {
				d.lines[i].Addons[j].Quantity--
				if d.lines[i].Addons[j].Quantity <= 0 {
					d.lines[i].Addons = append(d.lines[i].Addons[:j], d.lines[i].Addons[j+1:]...)
				}
				return true
			}
		}
		return false
	}
	return false
}

// Lines returns a copy of the cart contents.
func (d *Draft) Lines() []Line {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	for i := range out {
		if len(d.lines[i].Addons) > 0 {
			out[i].Addons = make([]AddonLine, len(d.lines[i].Addons))
			copy(out[i].Addons, d.lines[i].Addons)
		}
	}
	return out
}

func (d *Draft) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lines) == 0
}

// ComputeTotals prices the cart. Addon cost scales with both the addon
// quantity and the parent line quantity.
func (d *Draft) ComputeTotals() Totals {
	d.mu.Lock()
	defer d.mu.Unlock()
	var subtotal float64
	for _, line := range d.lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
		for _, addon := range line.Addons {
			subtotal += addon.UnitPrice * float64(addon.Quantity) * float64(line.Quantity)
		}
	}
	return Totals{Subtotal: subtotal, Total: subtotal}
}

// OrderRequest renders the draft as the backend's create-order payload.
func (d *Draft) OrderRequest() domain.CreateOrderRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	req := domain.CreateOrderRequest{
		StoreID:      d.StoreID,
		CustomerName: d.CustomerName,
		Items:        make([]domain.CreateOrderItem, 0, len(d.lines)),
	}
	for _, line := range d.lines {
		item := domain.CreateOrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
		for _, addon := range line.Addons {
			item.Addons = append(item.Addons, domain.CreateOrderAddon{
				AddonID:  addon.AddonID,
				Price:    addon.UnitPrice,
				Quantity: addon.Quantity,
			})
		}
		req.Items = append(req.Items, item)
	}
	return req
}

// Clear empties the cart after a successful submit.
func (d *Draft) Clear() {
	d.mu.Lock()
	d.lines = nil
	d.mu.Unlock()
}

// TryBeginSubmit marks the draft busy so a double-tapped submit cannot
// create two orders. It reports false when a submit is already in flight.
func (d *Draft) TryBeginSubmit() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitting {
		return false
	}
	d.submitting = true
	return true
}

func (d *Draft) EndSubmit() {
	d.mu.Lock()
	d.submitting = false
	d.mu.Unlock()
}
