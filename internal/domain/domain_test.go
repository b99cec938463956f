package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestIDUnmarshalAcceptsStringAndNumber(t *testing.T) {
	var rec ArtworkRecord
	if err := json.Unmarshal([]byte(`{"id":42,"title":"Sunset","price":100.5}`), &rec); err != nil {
		t.Fatalf("unmarshal numeric id: %v", err)
	}
	if rec.ID != "42" {
		t.Fatalf("id=%q", rec.ID)
	}
	if !rec.Price.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("price=%s", rec.Price)
	}

	if err := json.Unmarshal([]byte(`{"id":" a-1 ","title":"Dawn","price":"49.99"}`), &rec); err != nil {
		t.Fatalf("unmarshal string id: %v", err)
	}
	if rec.ID != "a-1" {
		t.Fatalf("id=%q", rec.ID)
	}
}

func TestIDUnmarshalRejectsObjects(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatalf("expected error for object id")
	}
}

func TestValidateLineItems(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	cases := []struct {
		name  string
		items []CartLineItem
		want  error
	}{
		{name: "empty", items: nil},
		{name: "ok", items: []CartLineItem{{ID: "a", Price: price, Quantity: 1}}},
		{name: "missing id", items: []CartLineItem{{Price: price, Quantity: 1}}, want: ErrMissingID},
		{name: "negative price", items: []CartLineItem{{ID: "a", Price: price.Neg(), Quantity: 1}}, want: ErrNegativePrice},
		{name: "zero quantity", items: []CartLineItem{{ID: "a", Price: price}}, want: ErrNonPositiveQty},
		{
			name:  "duplicate",
			items: []CartLineItem{{ID: "a", Price: price, Quantity: 1}, {ID: "a", Price: price, Quantity: 2}},
			want:  ErrDuplicateLineIDs,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateLineItems(tc.items)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDistinctIDsKeepsFirstSeenOrder(t *testing.T) {
	got := DistinctIDs([]CartLineItem{{ID: "b"}, {ID: "a"}, {ID: "b"}, {ID: "c"}})
	want := []ID{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
