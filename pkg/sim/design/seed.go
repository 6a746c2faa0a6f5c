package design

import "github.com/apisim/apisim/pkg/store"

// DefaultSeed is the dataset a fresh simulation starts from: four owned
// designs, one shared design, a root folder, two brand templates (one
// with autofill fields, one without), and one uploaded asset. Timestamps
// predate the simulated clock's epoch so seeded records always sort
// before created ones.
func DefaultSeed() store.Snapshot {
	return store.Snapshot{
		"designs": {
			"DAF00000001": seedDesign("DAF00000001", "Alpha Design", CurrentUserID, 1690000300, 2),
			"DAF00000002": seedDesign("DAF00000002", "Beta SearchMe", CurrentUserID, 1690000100, 1),
			"DAF00000003": seedDesign("DAF00000003", "Delta Another", CurrentUserID, 1690000200, 3),
			"DAF00000004": seedDesign("DAF00000004", "Gamma Shared Design", "", 1690000400, 1),
			"DAF00000005": seedDesign("DAF00000005", "My summer holiday", CurrentUserID, 1690000500, 5),
		},
		"folders": {
			RootFolderID: {
				"id":               RootFolderID,
				"name":             "Projects",
				"parent_folder_id": "",
				"design_ids":       []any{"DAF00000001", "DAF00000002"},
				"child_folder_ids": []any{},
				"created_at":       float64(1690000000),
				"updated_at":       float64(1690000000),
			},
		},
		"import_jobs": {},
		"brand_templates": {
			"DEMzWSwy3BI": {
				"id":          "DEMzWSwy3BI",
				"title":       "Advertisement Template",
				"design_type": map[string]any{"type": "preset", "name": "doc"},
				"view_url":    "https://design.example.com/design/DEMzWSwy3BI/view",
				"create_url":  "https://design.example.com/design/DEMzWSwy3BI/remix",
				"thumbnail": map[string]any{
					"width":  float64(595),
					"height": float64(335),
					"url":    "https://design.example.com/thumbnail/DEMzWSwy3BI.png",
				},
				"created_at": float64(1690000000),
				"updated_at": float64(1690000600),
				"datasets": map[string]any{
					"cute_pet_image_of_the_day": map[string]any{"type": "image"},
					"cute_pet_witty_pet_says":   map[string]any{"type": "text"},
					"cute_pet_sales_chart":      map[string]any{"type": "chart"},
				},
			},
			"DEMb2Z0yNbQ": {
				"id":          "DEMb2Z0yNbQ",
				"title":       "Plain Letterhead",
				"design_type": map[string]any{"type": "preset", "name": "doc"},
				"view_url":    "https://design.example.com/design/DEMb2Z0yNbQ/view",
				"create_url":  "https://design.example.com/design/DEMb2Z0yNbQ/remix",
				"thumbnail": map[string]any{
					"width":  float64(595),
					"height": float64(335),
					"url":    "https://design.example.com/thumbnail/DEMb2Z0yNbQ.png",
				},
				"created_at": float64(1690000100),
				"updated_at": float64(1690000700),
				"datasets":   map[string]any{},
			},
		},
		"autofill_jobs":     {},
		"asset_upload_jobs": {},
		"assets": {
			"Msd59349ff": {
				"id":   "Msd59349ff",
				"type": "image",
				"name": "My Awesome Upload",
				"tags": []any{"image", "holiday", "best day ever"},
				"thumbnail": map[string]any{
					"width":  float64(595),
					"height": float64(335),
					"url":    "https://design.example.com/thumbnail/Msd59349ff.png",
				},
				"created_at": float64(1690000200),
				"updated_at": float64(1690000800),
			},
		},
	}
}

func seedDesign(designID, title, ownerID string, updatedAt int64, pageCount int) store.Record {
	pages := make([]any, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		pages = append(pages, newPage(i))
	}
	return store.Record{
		"id":          designID,
		"title":       title,
		"design_type": map[string]any{"type": "preset", "name": "doc"},
		"owner":       map[string]any{"user_id": ownerID, "team_id": CurrentTeamID},
		"created_at":  float64(updatedAt - 100),
		"updated_at":  float64(updatedAt),
		"page_count":  float64(pageCount),
		"pages":       pages,
		"urls":        designURLs(designID),
	}
}
