package entity

import "time"

// SiteStatus estado de publicación de un sitio.
type SiteStatus string

const (
	SiteDraft         SiteStatus = "DRAFT"
	SiteRejected      SiteStatus = "REJECTED"
	SiteReadyToReview SiteStatus = "READY_TO_REVIEW"
	SiteActive        SiteStatus = "ACTIVE"
	SiteInactive      SiteStatus = "INACTIVE"
)

// Site sitio que agrupa espacios rentables.
type Site struct {
	ID                  int64
	Status              SiteStatus
	StockManagementType StockManagementType
	Spaces              []*Space
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
