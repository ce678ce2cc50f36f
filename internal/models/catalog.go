package models

import "time"

// Asset categories. Counts carry category-specific extra fields, and the
// withdrawal request flow is limited to office supplies at the API boundary.
const (
	CategoryLinens         = "linens"
	CategoryCentralSupply  = "central_supply"
	CategoryOfficeSupplies = "office_supplies"
	CategoryEquipment      = "equipment"
)

// ValidCategories defines the available asset type categories
var ValidCategories = []string{
	CategoryLinens,
	CategoryCentralSupply,
	CategoryOfficeSupplies,
	CategoryEquipment,
}

// IsValidCategory checks if a category is valid
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// AssetType groups assets into a category (linens, central supply, office
// supplies, equipment). Names are unique across the facility.
type AssetType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Asset is a concrete trackable item definition, e.g. "bed sheet" or
// "infusion pump". Names are unique within a type; duplicates across types
// are legal.
type Asset struct {
	ID        int64     `json:"id"`
	TypeID    int64     `json:"type_id"`
	Name      string    `json:"name"`
	Unit      *string   `json:"unit,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Department is an organizational unit owning one or more rooms
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Room is a physical location inside a department where holdings live
type Room struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateAssetTypeRequest represents the request body for creating an asset type
type CreateAssetTypeRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// CreateAssetRequest represents the request body for creating an asset
type CreateAssetRequest struct {
	TypeID int64   `json:"type_id" validate:"required"`
	Name   string  `json:"name" validate:"required"`
	Unit   *string `json:"unit,omitempty"`
}

// CreateDepartmentRequest represents the request body for creating a department
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateRoomRequest represents the request body for creating a room
type CreateRoomRequest struct {
	DepartmentID int64  `json:"department_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
}
