package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAdditive(t *testing.T) {
	t.Run("appends unseen product", func(t *testing.T) {
		items := []LineItem{{Product: "P1", Quantity: 2}}
		got := MergeAdditive(items, "P2", 1)
		assert.Equal(t, []LineItem{{Product: "P1", Quantity: 2}, {Product: "P2", Quantity: 1}}, got)
	})

	t.Run("sums existing product", func(t *testing.T) {
		items := []LineItem{{Product: "P1", Quantity: 2}}
		got := MergeAdditive(items, "P1", 3)
		assert.Equal(t, []LineItem{{Product: "P1", Quantity: 5}}, got)
	})

	t.Run("twice from empty", func(t *testing.T) {
		got := MergeAdditive(nil, "P1", 4)
		got = MergeAdditive(got, "P1", 6)
		require.Len(t, got, 1)
		assert.Equal(t, 10, got[0].Quantity)
	})

	t.Run("keeps order of untouched items", func(t *testing.T) {
		items := []LineItem{{Product: "A", Quantity: 1}, {Product: "B", Quantity: 1}, {Product: "C", Quantity: 1}}
		got := MergeAdditive(items, "B", 1)
		assert.Equal(t, []LineItem{{Product: "A", Quantity: 1}, {Product: "B", Quantity: 2}, {Product: "C", Quantity: 1}}, got)
	})

	t.Run("does not modify input", func(t *testing.T) {
		items := []LineItem{{Product: "P1", Quantity: 2}}
		_ = MergeAdditive(items, "P1", 3)
		_ = MergeAdditive(items, "P2", 3)
		assert.Equal(t, []LineItem{{Product: "P1", Quantity: 2}}, items)
	})
}

func TestMergeAbsolute(t *testing.T) {
	t.Run("overwrites existing product", func(t *testing.T) {
		items := []LineItem{{Product: "P1", Quantity: 5}}
		got := MergeAbsolute(items, "P1", 1)
		assert.Equal(t, []LineItem{{Product: "P1", Quantity: 1}}, got)
	})

	t.Run("appends unseen product", func(t *testing.T) {
		got := MergeAbsolute([]LineItem{{Product: "P1", Quantity: 5}}, "P9", 2)
		assert.Equal(t, []LineItem{{Product: "P1", Quantity: 5}, {Product: "P9", Quantity: 2}}, got)
	})

	t.Run("does not modify input", func(t *testing.T) {
		items := []LineItem{{Product: "P1", Quantity: 5}}
		_ = MergeAbsolute(items, "P1", 1)
		assert.Equal(t, 5, items[0].Quantity)
	})
}

func TestMergeKeepsOneLineItemPerProduct(t *testing.T) {
	var items []LineItem
	ops := []struct {
		additive bool
		product  string
		qty      int
	}{
		{true, "A", 1}, {true, "B", 2}, {false, "A", 7}, {true, "A", 1},
		{false, "C", 3}, {true, "C", 3}, {false, "B", 1}, {true, "B", 4},
	}
	for _, op := range ops {
		if op.additive {
			items = MergeAdditive(items, op.product, op.qty)
		} else {
			items = MergeAbsolute(items, op.product, op.qty)
		}
	}

	seen := map[string]int{}
	for _, item := range items {
		seen[item.Product]++
	}
	for product, n := range seen {
		assert.Equalf(t, 1, n, "product %s", product)
	}
	assert.Equal(t, []LineItem{{Product: "A", Quantity: 8}, {Product: "B", Quantity: 5}, {Product: "C", Quantity: 6}}, items)
}

func TestRemoveLineItem(t *testing.T) {
	items := []LineItem{{Product: "P1", Quantity: 1}, {Product: "P2", Quantity: 2}}

	got, removed := RemoveLineItem(items, "P1")
	assert.True(t, removed)
	assert.Equal(t, []LineItem{{Product: "P2", Quantity: 2}}, got)

	got, removed = RemoveLineItem(items, "P3")
	assert.False(t, removed)
	assert.Equal(t, items, got)
}

func TestCartExpand(t *testing.T) {
	cart := Cart{
		ID:       "c1",
		User:     "u1",
		Products: []LineItem{{Product: "P1", Quantity: 2}, {Product: "gone", Quantity: 1}},
	}
	expanded := cart.Expand(map[string]Product{"P1": {ID: "P1", Title: "Shirt"}})

	require.Len(t, expanded.Products, 2)
	require.NotNil(t, expanded.Products[0].Product)
	assert.Equal(t, "Shirt", expanded.Products[0].Product.Title)
	assert.Equal(t, 2, expanded.Products[0].Quantity)
	assert.Nil(t, expanded.Products[1].Product)
	assert.Equal(t, []string{"P1", "gone"}, cart.ProductIDs())
}
