package model

// Driver is a roster entry. IDs are stored as scanned from the badge,
// free-form; comparisons go through identity.Normalize.
type Driver struct {
	ID            string `gorm:"primaryKey;size:64" json:"id"`
	Name          string `gorm:"size:255" json:"name"`
	Subcontractor string `gorm:"size:64" json:"subcontractor"`
	Plate         string `gorm:"size:32" json:"plate"`
	Tour          string `gorm:"size:32" json:"tour"`
	Telephone     string `gorm:"size:64" json:"telephone"`
}

func (Driver) TableName() string {
	return "drivers"
}
