package retail

import "github.com/apisim/apisim/pkg/store"

// DefaultSeed is the dataset a fresh simulation starts from: three
// products, two customers, and one paid order so the aggregates have
// something to stand on.
func DefaultSeed() store.Snapshot {
	return store.Snapshot{
		"products": {
			"1": {
				"id": "1", "title": "Trail Running Shoe", "vendor": "Ridgeline",
				"product_type": "footwear", "price": "129.00",
				"created_at": "2023-08-01T10:00:00Z", "updated_at": "2023-08-15T10:00:00Z",
			},
			"2": {
				"id": "2", "title": "Merino Base Layer", "vendor": "Ridgeline",
				"product_type": "apparel", "price": "89.00",
				"created_at": "2023-08-02T10:00:00Z", "updated_at": "2023-08-20T10:00:00Z",
			},
			"3": {
				"id": "3", "title": "Titanium Trekking Pole", "vendor": "Summit Gear",
				"product_type": "equipment", "price": "75.00",
				"created_at": "2023-08-03T10:00:00Z", "updated_at": "2023-08-10T10:00:00Z",
			},
		},
		"customers": {
			"1": {
				"id": "1", "first_name": "Bob", "last_name": "Norman",
				"email": "bob.norman@example.com", "tags": "VIP",
				"orders_count": float64(1), "total_spent": "129.00", "state": "enabled",
				"created_at": "2023-07-01T09:00:00Z", "updated_at": "2023-09-01T09:00:00Z",
			},
			"2": {
				"id": "2", "first_name": "Priya", "last_name": "Anand",
				"email": "priya.anand@example.com", "tags": "",
				"orders_count": float64(0), "total_spent": "0.00", "state": "enabled",
				"created_at": "2023-07-02T09:00:00Z", "updated_at": "2023-07-02T09:00:00Z",
			},
		},
		"orders": {
			"1": {
				"id": "1", "order_number": float64(1001), "name": "#1001",
				"customer_id": "1",
				"line_items": []any{
					map[string]any{"product_id": "1", "title": "Trail Running Shoe", "quantity": float64(1), "price": "129.00"},
				},
				"total_price": "129.00", "financial_status": "paid", "currency": "USD",
				"token": "seedtokenseedtokenseedtokenseed1", "checkout_token": "chkseedcheckout0001",
				"cancelled_at": "", "closed_at": "",
				"created_at": "2023-09-01T09:00:00Z", "updated_at": "2023-09-01T09:00:00Z",
			},
		},
		"draft_orders": {},
		"transactions": {
			"1": {
				"id": "1", "order_id": "1", "kind": "sale", "amount": "129.00",
				"currency": "USD", "status": "success",
				"created_at": "2023-09-01T09:05:00Z",
			},
		},
	}
}
