package permissions

import "strings"

// Access is a bitfield representing a set of access keys.
type Access int64

const (
	AccessFleetView      Access = 1 << 0
	AccessFleetInvite    Access = 1 << 1
	AccessFleetConfigure Access = 1 << 2
	AccessWaitlistView   Access = 1 << 3
	AccessWaitlistManage Access = 1 << 4
	AccessPilotView      Access = 1 << 5
	AccessNotesView      Access = 1 << 6
	AccessNotesAdd       Access = 1 << 7
	AccessSearch         Access = 1 << 8
	AccessSkillView      Access = 1 << 9
	AccessStatsView      Access = 1 << 10
	AccessBansManage     Access = 1 << 11
	AccessAccessView     Access = 1 << 12
	AccessAccessManage   Access = 1 << 13

	// Convenience sets
	AccessAllFleet = AccessFleetView | AccessFleetInvite | AccessFleetConfigure
	AccessAllNotes = AccessNotesView | AccessNotesAdd
	AccessAll      = Access(0x7FFFFFFFFFFFFFFF)
)

// Has returns true if a contains all bits in access.
func (a Access) Has(access Access) bool { return a&access == access }

// Add returns a with the bits from access set.
func (a Access) Add(access Access) Access { return a | access }

// Remove returns a with the bits from access cleared.
func (a Access) Remove(access Access) Access { return a &^ access }

// accessKeys maps individual access bits to their wire names.
var accessKeys = map[Access]string{
	AccessFleetView:      "fleet-view",
	AccessFleetInvite:    "fleet-invite",
	AccessFleetConfigure: "fleet-configure",
	AccessWaitlistView:   "waitlist-view",
	AccessWaitlistManage: "waitlist-manage",
	AccessPilotView:      "pilot-view",
	AccessNotesView:      "notes-view",
	AccessNotesAdd:       "notes-add",
	AccessSearch:         "search",
	AccessSkillView:      "skill-view",
	AccessStatsView:      "stats-view",
	AccessBansManage:     "bans-manage",
	AccessAccessView:     "access-view",
	AccessAccessManage:   "access-manage",
}

// ByKey resolves a wire name like "bans-manage" to its access bit. Returns
// zero for unknown keys.
func ByKey(key string) Access {
	for bit, name := range accessKeys {
		if name == key {
			return bit
		}
	}
	return 0
}

// Keys returns the wire names of all access bits set in a, in a stable order.
func (a Access) Keys() []string {
	var keys []string
	for _, bit := range keyOrder {
		if a.Has(bit) {
			keys = append(keys, accessKeys[bit])
		}
	}
	return keys
}

// keyOrder fixes the iteration order for Keys; map iteration is randomized.
var keyOrder = []Access{
	AccessFleetView,
	AccessFleetInvite,
	AccessFleetConfigure,
	AccessWaitlistView,
	AccessWaitlistManage,
	AccessPilotView,
	AccessNotesView,
	AccessNotesAdd,
	AccessSearch,
	AccessSkillView,
	AccessStatsView,
	AccessBansManage,
	AccessAccessView,
	AccessAccessManage,
}

// String returns a human-readable representation of the access set, listing
// all set keys separated by " | ".
func (a Access) String() string {
	if a == 0 {
		return "NONE"
	}

	keys := a.Keys()
	if len(keys) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(keys, " | ")
}
