package domain

import "testing"

func item(product string, price float64, qty int) CartItem {
	return CartItem{ID: "line-" + product, ProductID: product, Name: product, Price: price, Quantity: qty}
}

func TestReduce_AddItemMergesExistingProduct(t *testing.T) {
	s := Reduce(CartState{}, AddItem{Item: item("p1", 2.5, 2)})
	s = Reduce(s, AddItem{Item: item("p1", 2.5, 3)})

	if len(s.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(s.Items))
	}
	if s.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", s.Items[0].Quantity)
	}
	if s.Total != 12.5 {
		t.Fatalf("expected total 12.5, got %v", s.Total)
	}
}

func TestReduce_TotalMatchesItemsAfterAnySequence(t *testing.T) {
	actions := []CartAction{
		SetCart{Items: []CartItem{item("a", 10, 1), item("b", 0.25, 4)}},
		AddItem{Item: item("c", 5, 2)},
		UpdateQuantity{ProductID: "a", Quantity: 3},
		RemoveItem{ProductID: "b"},
		AddItem{Item: item("a", 10, 1)},
		SetLoading{Loading: true},
		UpdateQuantity{ProductID: "c", Quantity: 0},
	}

	s := CartState{}
	for i, a := range actions {
		s = Reduce(s, a)
		if s.Total != CartTotal(s.Items) {
			t.Fatalf("step %d: total %v drifted from items %v", i, s.Total, CartTotal(s.Items))
		}
	}
	if s.Total != 50 {
		t.Fatalf("expected final total 50, got %v", s.Total)
	}
	if !s.Loading {
		t.Fatalf("expected loading flag to persist")
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	orig := Reduce(CartState{}, SetCart{Items: []CartItem{item("a", 1, 1), item("b", 1, 1)}})
	_ = Reduce(orig, RemoveItem{ProductID: "a"})
	_ = Reduce(orig, UpdateQuantity{ProductID: "b", Quantity: 9})

	if len(orig.Items) != 2 || orig.Items[0].ProductID != "a" || orig.Items[1].Quantity != 1 {
		t.Fatalf("input state was mutated: %+v", orig.Items)
	}
}

func TestReduce_SetCartCoalescesDuplicates(t *testing.T) {
	s := Reduce(CartState{}, SetCart{Items: []CartItem{item("a", 2, 1), item("a", 2, 2), item("z", 1, 0)}})
	if len(s.Items) != 1 || s.Items[0].Quantity != 3 {
		t.Fatalf("expected one line of 3, got %+v", s.Items)
	}
	if s.Total != 6 {
		t.Fatalf("expected total 6, got %v", s.Total)
	}
}

func TestReduce_ClearCartAndIgnoredQuantities(t *testing.T) {
	s := Reduce(CartState{}, AddItem{Item: item("a", 3, 0)})
	if len(s.Items) != 0 {
		t.Fatalf("zero-quantity add must be ignored")
	}
	s = Reduce(s, AddItem{Item: item("a", 3, 1)})
	s = Reduce(s, ClearCart{})
	if len(s.Items) != 0 || s.Total != 0 {
		t.Fatalf("expected empty cart, got %+v", s)
	}
}
