package daemon

import (
	"encoding/json"
	"time"

	"smartshelf/internal/catalog"
)

type shelfView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GPIOPin   *int      `json:"gpio_pin"`
	CabinetID *int64    `json:"cabinet_id"`
	RoomID    *int64    `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newShelfView(s *catalog.Shelf) shelfView {
	return shelfView{
		ID:        s.ID,
		Name:      s.Name,
		GPIOPin:   s.GPIOPin,
		CabinetID: s.CabinetID,
		RoomID:    s.RoomID,
		CreatedAt: s.CreatedAt,
	}
}

type documentView struct {
	ID         int64           `json:"id"`
	Reference  string          `json:"reference"`
	Name       string          `json:"name"`
	Status     string          `json:"status"`
	ShelfLabel string          `json:"shelf_label"`
	CabinetID  *int64          `json:"cabinet_id"`
	RoomID     *int64          `json:"room_id"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newDocumentView(d *catalog.Document) documentView {
	view := documentView{
		ID:         d.ID,
		Reference:  d.Reference,
		Name:       d.Name,
		Status:     d.Status,
		ShelfLabel: d.ShelfLabel,
		CabinetID:  d.CabinetID,
		RoomID:     d.RoomID,
		CreatedAt:  d.CreatedAt,
	}
	if d.MetadataJSON != "" && json.Valid([]byte(d.MetadataJSON)) {
		view.Metadata = json.RawMessage(d.MetadataJSON)
	}
	return view
}

type shelfDocumentsResponse struct {
	Shelf     shelfView      `json:"shelf"`
	Documents []documentView `json:"documents"`
}
