package entity

import "time"

// Size representa una presentación/tamaño de producto (botella 330ml, barril 50L).
type Size struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
