package domain

// CartItem is one line of a cart. ID is server-assigned for authenticated
// carts and locally generated for guest carts.
type CartItem struct {
	ID          string  `json:"id" bson:"id"`
	ProductID   string  `json:"product_id" bson:"product_id"`
	Name        string  `json:"name" bson:"name"`
	Price       float64 `json:"price" bson:"price"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	Image       string  `json:"image,omitempty" bson:"image,omitempty"`
	AffiliateID string  `json:"affiliate_id,omitempty" bson:"affiliate_id,omitempty"`
}

// CartState is owned by the cart engine. Total is always derived from Items.
type CartState struct {
	Items   []CartItem `json:"items"`
	Total   float64    `json:"total"`
	Loading bool       `json:"loading"`
}

// Clone returns a copy that shares no memory with s.
func (s CartState) Clone() CartState {
	out := s
	out.Items = append([]CartItem(nil), s.Items...)
	if out.Items == nil {
		out.Items = []CartItem{}
	}
	return out
}

// Find returns the line for productID.
func (s CartState) Find(productID string) (CartItem, bool) {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// CartAction is a mutation intent understood by Reduce.
type CartAction interface {
	cartAction()
}

type (
	SetCart        struct{ Items []CartItem }
	AddItem        struct{ Item CartItem }
	RemoveItem     struct{ ProductID string }
	UpdateQuantity struct {
		ProductID string
		Quantity  int
	}
	ClearCart  struct{}
	SetLoading struct{ Loading bool }
)

func (SetCart) cartAction()        {}
func (AddItem) cartAction()        {}
func (RemoveItem) cartAction()     {}
func (UpdateQuantity) cartAction() {}
func (ClearCart) cartAction()      {}
func (SetLoading) cartAction()     {}

// Reduce applies action to state and returns the new state. The input is
// never modified. Total is recomputed from scratch on every call.
func Reduce(state CartState, action CartAction) CartState {
	next := state.Clone()

	switch a := action.(type) {
	case SetCart:
		next.Items = coalesce(a.Items)
	case AddItem:
		if a.Item.Quantity < 1 {
			break
		}
		merged := false
		for i := range next.Items {
			if next.Items[i].ProductID == a.Item.ProductID {
				next.Items[i].Quantity += a.Item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			next.Items = append(next.Items, a.Item)
		}
	case RemoveItem:
		kept := next.Items[:0]
		for _, it := range next.Items {
			if it.ProductID != a.ProductID {
				kept = append(kept, it)
			}
		}
		next.Items = kept
	case UpdateQuantity:
		if a.Quantity < 1 {
			break
		}
		for i := range next.Items {
			if next.Items[i].ProductID == a.ProductID {
				next.Items[i].Quantity = a.Quantity
			}
		}
	case ClearCart:
		next.Items = []CartItem{}
	case SetLoading:
		next.Loading = a.Loading
	}

	next.Total = CartTotal(next.Items)
	return next
}

// CartTotal is the sum of price × quantity over items.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// coalesce copies items, folding repeated products into one line and
// dropping lines with a non-positive quantity.
func coalesce(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
