package permissions

// roleGrants maps a staff role to the access keys it carries. Unknown roles
// carry nothing.
var roleGrants = map[string]Access{
	"admin": AccessAll,
	"leadership": AccessAllFleet | AccessWaitlistView | AccessWaitlistManage |
		AccessPilotView | AccessAllNotes | AccessSearch | AccessSkillView |
		AccessStatsView | AccessBansManage | AccessAccessView | AccessAccessManage,
	"fc": AccessAllFleet | AccessWaitlistView | AccessWaitlistManage |
		AccessPilotView | AccessAllNotes | AccessSearch | AccessSkillView |
		AccessStatsView | AccessBansManage,
	"fc-trainer": AccessAllFleet | AccessWaitlistView | AccessWaitlistManage |
		AccessPilotView | AccessAllNotes | AccessSearch | AccessSkillView |
		AccessStatsView,
	"trainee": AccessFleetView | AccessWaitlistView | AccessPilotView |
		AccessNotesView | AccessSearch | AccessSkillView,
}

// rankOrder lists known roles from most to least privileged.
var rankOrder = []string{"admin", "leadership", "fc", "fc-trainer", "trainee"}

// ForRole returns the access set granted by a staff role.
func ForRole(role string) Access {
	return roleGrants[role]
}

// ValidRole reports whether role is a known staff role.
func ValidRole(role string) bool {
	_, ok := roleGrants[role]
	return ok
}

// Roles returns the known staff roles from most to least privileged.
func Roles() []string {
	out := make([]string, len(rankOrder))
	copy(out, rankOrder)
	return out
}
