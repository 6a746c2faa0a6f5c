package sourcing

import "github.com/apisim/apisim/pkg/store"

// DefaultSeed is the dataset a fresh simulation starts from: three
// supplier companies at different lifecycle stages, their payment and
// category lookups, two attachments, two contracts, one open sourcing
// event with a bid, three projects, and two users.
func DefaultSeed() store.Snapshot {
	return store.Snapshot{
		"supplier_companies": {
			"1": {
				"id": "1", "name": "Acme Industrial", "description": "Machined parts",
				"external_id": "ACME-01", "segmentation_status": "preferred",
				"url": "https://acme.example.com", "duns_number": "150483782",
				"updated_at":                  "2023-11-02T09:00:00Z",
				"supplier_category_id":        "10",
				"default_payment_term_id":     "net30",
				"payment_type_ids":            []any{"ach", "wire"},
				"default_payment_type_id":     "ach",
				"payment_currency_ids":        []any{"usd", "eur"},
				"default_payment_currency_id": "usd",
				"attachment_ids":              []any{"1", "2"},
			},
			"2": {
				"id": "2", "name": "Borealis Logistics", "description": "Freight and warehousing",
				"external_id": "", "segmentation_status": "approved",
				"url": "", "duns_number": "",
				"updated_at":              "2023-11-10T14:30:00Z",
				"supplier_category_id":    "11",
				"default_payment_term_id": "net60",
				"payment_type_ids":        []any{"wire"},
				"payment_currency_ids":    []any{"usd"},
				"attachment_ids":          []any{},
			},
			"3": {
				"id": "3", "name": "Cobalt Staffing", "description": "Contingent labor",
				"external_id": "COBALT-07", "segmentation_status": "prospective",
				"url": "", "duns_number": "",
				"updated_at":     "2023-12-01T08:15:00Z",
				"attachment_ids": []any{},
			},
		},
		"supplier_categories": {
			"10": {"id": "10", "name": "Manufacturing"},
			"11": {"id": "11", "name": "Logistics"},
		},
		"payment_terms": {
			"net30": {"id": "net30", "name": "Net 30"},
			"net60": {"id": "net60", "name": "Net 60"},
		},
		"payment_types": {
			"ach":  {"id": "ach", "name": "ACH"},
			"wire": {"id": "wire", "name": "Wire Transfer"},
		},
		"payment_currencies": {
			"usd": {"id": "usd", "alpha": "USD"},
			"eur": {"id": "eur", "alpha": "EUR"},
		},
		"attachments": {
			"1": {
				"id": "1", "name": "w9.pdf", "content_type": "application/pdf",
				"external_id": "ATT-W9", "uploaded_by": "1",
				"updated_at": "2023-10-20T10:00:00Z",
			},
			"2": {
				"id": "2", "name": "insurance-certificate.pdf", "content_type": "application/pdf",
				"external_id": "", "uploaded_by": "2",
				"updated_at": "2023-10-21T10:00:00Z",
			},
		},
		"contract_types": {
			"msa": {"id": "msa", "name": "Master Service Agreement"},
			"sow": {"id": "sow", "name": "Statement of Work"},
		},
		"contracts": {
			"1": {
				"id": "1", "title": "Acme parts supply 2024", "status": "active",
				"external_id": "CTR-2024-001", "updated_at": "2023-12-05T10:00:00Z",
				"supplier_company_id": "1", "contract_type_id": "msa",
				"attachment_ids": []any{"2"},
			},
			"2": {
				"id": "2", "title": "Warehouse services draft", "status": "draft",
				"external_id": "", "updated_at": "2023-12-12T16:45:00Z",
				"supplier_company_id": "2", "contract_type_id": "sow",
				"attachment_ids": []any{},
			},
		},
		"events": {
			"1": {
				"id": "1", "title": "Q1 freight RFP", "status": "open",
				"updated_at": "2023-12-15T09:00:00Z",
			},
			"2": {
				"id": "2", "title": "Legacy tooling auction", "status": "closed",
				"updated_at": "2023-10-01T09:00:00Z",
			},
		},
		"bids": {
			"1": {
				"id": "1", "event_id": "1", "supplier_company_id": "2",
				"amount": float64(125000), "currency": "USD", "status": "submitted",
				"updated_at": "2023-12-16T11:00:00Z",
			},
		},
		"projects": {
			"1": {
				"id": "1", "title": "Freight consolidation", "description": "Consolidate regional freight spend",
				"external_id": "PRJ-100", "state": "active", "number": float64(1),
				"updated_at":           "2023-11-20T09:00:00Z",
				"attachment_ids":       []any{"1"},
				"supplier_company_ids": []any{"1", "2"},
			},
			"2": {
				"id": "2", "title": "Contingent labor review", "description": "Benchmark staffing rates",
				"external_id": "", "state": "draft", "number": float64(2),
				"updated_at":           "2023-12-08T15:00:00Z",
				"attachment_ids":       []any{},
				"supplier_company_ids": []any{"3"},
			},
			"3": {
				"id": "3", "title": "Tooling refresh", "description": "Replace end-of-life tooling",
				"external_id": "PRJ-102", "state": "completed", "number": float64(3),
				"updated_at":           "2023-12-18T11:30:00Z",
				"attachment_ids":       []any{},
				"supplier_company_ids": []any{},
			},
		},
		"users": {
			"1": {
				"id": "1", "name": "Dana Reyes", "email": "dana.reyes@example.com",
				"title": "Category Manager", "updated_at": "2023-09-01T12:00:00Z",
			},
			"2": {
				"id": "2", "name": "Jun Park", "email": "jun.park@example.com",
				"title": "Sourcing Analyst", "updated_at": "2023-09-02T12:00:00Z",
			},
		},
	}
}
