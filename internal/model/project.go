package model

import "time"

// Project defaults taken from the project creation form.
const (
	DefaultProjectType   = "empresa"
	ProjectStatusActive  = "activo"
	ProjectStatusArchive = "archivado"
)

// ProjectTypes lists the accepted project types.
var ProjectTypes = []string{"empresa", "personal", "freelance", "comercio", "servicios", "otro"}

// ValidProjectType reports whether t is one of ProjectTypes.
func ValidProjectType(t string) bool {
	for _, known := range ProjectTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Project groups the accounts and transactions of one set of books.
type Project struct {
	ID           string
	Name         string
	Description  string
	Type         string
	OwnerID      string
	Status       string
	CreatedAt    time.Time
	LastModified time.Time
}
