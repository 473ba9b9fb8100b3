package cart

import "testing"

func TestItemSubtotal(t *testing.T) {
	item := Item{ProductID: 7, Price: "0.0500", Quantity: 2}

	if got := item.Subtotal().StringFixed(4); got != "0.1000" {
		t.Errorf("Expected subtotal 0.1000, got %s", got)
	}
}

func TestItemSubtotal_InvalidPrice(t *testing.T) {
	item := Item{ProductID: 7, Price: "not-a-number", Quantity: 3}

	// A corrupted snapshot must not break total computation
	if got := item.Subtotal().StringFixed(4); got != "0.0000" {
		t.Errorf("Expected subtotal 0.0000 for invalid price, got %s", got)
	}
}

func TestStorageKey(t *testing.T) {
	if StorageKey != "chainfit-cart" {
		t.Errorf("Expected storage key 'chainfit-cart', got %s", StorageKey)
	}
}
