package models

import (
	"time"

	"github.com/google/uuid"
)

// PickedUnit is one physical bottle expanded from a line item's quantity at
// promotion time, assigned to a numbered box.
type PickedUnit struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	LineItemID uuid.UUID `gorm:"column:line_item_id;type:uuid;not null"`
	WineName   string    `gorm:"column:wine_name;not null"`
	Sequence   int       `gorm:"column:sequence;not null"`
	BoxNumber  int       `gorm:"column:box_number;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
