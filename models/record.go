package models

import "time"

// Record holds the identity and timestamps shared by every stored entity.
// IDs are assigned by the store and are never reused within it.
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt" search:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt" search:"-"`
}

func (r *Record) GetID() uint   { return r.ID }
func (r *Record) SetID(id uint) { r.ID = id }

// Touch sets the timestamps the way the SQL store would.
func (r *Record) Touch(created, updated time.Time) {
	r.CreatedAt = created
	r.UpdatedAt = updated
}

func (r *Record) Created() time.Time { return r.CreatedAt }

// Status values shared by custody headers and their items.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

// Stock locations.
const (
	LocationMainStore   = "Main Store"
	LocationSafe        = "Safe"
	LocationDisplayCase = "Display Case"
)

var Locations = []string{LocationMainStore, LocationSafe, LocationDisplayCase}

// NormalizeLocation defaults an empty location and reports whether the value is known.
func NormalizeLocation(loc string) (string, bool) {
	if loc == "" {
		return LocationMainStore, true
	}
	for _, l := range Locations {
		if l == loc {
			return l, true
		}
	}
	return loc, false
}
