package service

import (
	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/pkg/metrics"
)

// denied records the reason and returns the generic Forbidden error; the
// reason never reaches the client.
func denied(reason string) error {
	metrics.AccessDeniedTotal.WithLabelValues(reason).Inc()
	return domain.ErrForbidden
}

func requireRole(caller domain.Caller, role domain.Role) error {
	if caller.Role != role {
		return denied("role")
	}
	return nil
}

// canViewReport grants citizens their own reports and officials the reports
// of their municipality.
func canViewReport(caller domain.Caller, r *domain.Report) bool {
	switch caller.Role {
	case domain.RoleCitizen:
		return r.CreatedBy == caller.ID
	case domain.RoleOfficial:
		return caller.InMunicipality(r.MunicipalityID)
	}
	return false
}

// canViewUser grants everyone their own profile and officials the profiles
// registered in their municipality.
func canViewUser(caller domain.Caller, u *domain.User) bool {
	if u.ID == caller.ID {
		return true
	}
	return caller.IsOfficial() && caller.InMunicipality(u.MunicipalityID)
}
