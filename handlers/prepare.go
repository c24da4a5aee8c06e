package handlers

import (
	"slices"
	"strings"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/utils"
)

func checkLocation(loc *string) error {
	l, ok := models.NormalizeLocation(strings.TrimSpace(*loc))
	if !ok {
		return invalidf("unknown location %q, expected one of %s", *loc, strings.Join(models.Locations, ", "))
	}
	*loc = l
	return nil
}

func PrepareLooseStock(s *models.LooseStock) error {
	return checkLocation(&s.Location)
}

func PrepareCertifiedStock(s *models.CertifiedStock) error {
	s.Lab = strings.ToUpper(strings.TrimSpace(s.Lab))
	if s.Lab != "" && !slices.Contains(models.CertificateLabs, s.Lab) {
		return invalidf("unknown lab %q, expected one of %s", s.Lab, strings.Join(models.CertificateLabs, ", "))
	}
	return checkLocation(&s.Location)
}

func PrepareJewelleryStock(s *models.JewelleryStock) error {
	return checkLocation(&s.Location)
}

func PrepareSale(s *models.Sale) error {
	s.FillTotal()
	return nil
}

func PreparePurchase(p *models.Purchase) error {
	p.FillTotal()
	return nil
}

func PrepareExpense(e *models.Expense) error {
	e.FillTotal()
	return nil
}

// PrepareMemo pins the memo to kind and fills item defaults.
func PrepareMemo(kind string) func(*models.Memo) error {
	return func(m *models.Memo) error {
		m.Kind = kind
		m.Normalize()
		return nil
	}
}

// KeepMemoDecisions stops a plain update from reopening or closing memo
// lines; only the decision endpoint moves them.
func KeepMemoDecisions(stored, m *models.Memo) {
	m.KeepProcessed(stored)
}

// KeepIgiReceipts is the IGI counterpart of KeepMemoDecisions.
func KeepIgiReceipts(stored, g *models.IgiIssue) {
	g.KeepReceived(stored)
}

func PrepareIgiIssue(g *models.IgiIssue) error {
	g.Normalize()
	return nil
}

// PrepareRole rejects permission ids that are neither catalog entries nor
// "resource:action" wildcards.
func PrepareRole(known []models.Permission) func(*models.Role) error {
	return func(role *models.Role) error {
		role.Name = strings.TrimSpace(role.Name)
		if role.Name == "" {
			return invalidf("role name is required")
		}
		for _, p := range role.Permissions {
			if !permissionKnown(known, p) {
				return invalidf("unknown permission %q", p)
			}
		}
		return nil
	}
}

// RoleDefaults makes new roles active and keeps the stored flag when an
// update omits isActive.
func RoleDefaults(stored, role *models.Role) {
	role.IsActive = true
	if stored != nil {
		role.IsActive = stored.IsActive
	}
}

func permissionKnown(known []models.Permission, p string) bool {
	for _, k := range known {
		if utils.MatchesPermission(p, k.ID) {
			return true
		}
	}
	return false
}
