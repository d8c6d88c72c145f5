package models

// MergeAdditive adds qty to the line item for product, appending a new
// line item when the product is not in items yet. items is not modified.
func MergeAdditive(items []LineItem, product string, qty int) []LineItem {
	return merge(items, product, qty, func(existing, incoming int) int {
		return existing + incoming
	})
}

// MergeAbsolute sets the quantity of the line item for product to qty,
// appending a new line item when the product is not in items yet.
// items is not modified.
func MergeAbsolute(items []LineItem, product string, qty int) []LineItem {
	return merge(items, product, qty, func(_, incoming int) int {
		return incoming
	})
}

func merge(items []LineItem, product string, qty int, combine func(existing, incoming int) int) []LineItem {
	if indexOf(items, product) < 0 {
		out := make([]LineItem, len(items), len(items)+1)
		copy(out, items)
		return append(out, LineItem{Product: product, Quantity: qty})
	}

	out := make([]LineItem, len(items))
	for i, item := range items {
		if item.Product == product {
			out[i] = LineItem{Product: product, Quantity: combine(item.Quantity, qty)}
			continue
		}
		out[i] = item
	}
	return out
}

// RemoveLineItem drops every line item for product. The second return
// value reports whether anything was removed.
func RemoveLineItem(items []LineItem, product string) ([]LineItem, bool) {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Product != product {
			out = append(out, item)
		}
	}
	return out, len(out) != len(items)
}

func indexOf(items []LineItem, product string) int {
	for i, item := range items {
		if item.Product == product {
			return i
		}
	}
	return -1
}
