package service

import (
	"github.com/dboika/folio/database/model"
)

// AdminGuard admits exactly one identity: the user whose id equals the
// configured administrator id.
type AdminGuard struct {
	adminID int
}

func NewAdminGuard(adminID int) *AdminGuard {
	return &AdminGuard{adminID: adminID}
}

// RequireAdmin returns ErrForbidden unless principal is the administrator.
// A nil principal is an anonymous visitor.
func (g *AdminGuard) RequireAdmin(principal *model.User) error {
	if principal == nil || principal.Id != g.adminID {
		return ErrForbidden
	}
	return nil
}

func (g *AdminGuard) IsAdmin(principal *model.User) bool {
	return g.RequireAdmin(principal) == nil
}

func (g *AdminGuard) AdminID() int {
	return g.adminID
}
