package models

// Role is the account role of whoever is looking at a game
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleParent Role = "parent"
	RolePlayer Role = "player"
)

// Viewer identifies the signed-in user for visibility rules
type Viewer struct {
	UserID   string   `json:"userId"`
	Role     Role     `json:"role"`
	ChildIDs []string `json:"childIds,omitempty"` // registered children of a parent
}
