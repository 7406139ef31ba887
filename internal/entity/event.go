package entity

import (
	"time"
)

type Event struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	Date        time.Time `json:"date" db:"date"`
	MaxCapacity int       `json:"max_capacity" db:"max_capacity"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type EventWithAvailability struct {
	Event
	RegisteredCount int `json:"registered_count"`
	AvailableSpots  int `json:"available_spots"`
}
