package activity

// Kind is the closed set of auditable actions. The activity_logs CHECK
// constraint mirrors this list; adding a kind needs a migration.
type Kind string

const (
	KindLogin                      Kind = "login"
	KindLogout                     Kind = "logout"
	KindFileDownload               Kind = "file_download"
	KindFileUpload                 Kind = "file_upload"
	KindFileDelete                 Kind = "file_delete"
	KindFileView                   Kind = "file_view"
	KindVenueChecklistCreated      Kind = "venue_checklist_created"
	KindVenueChecklistUpdated      Kind = "venue_checklist_updated"
	KindVenueChecklistItemsUpdated Kind = "venue_checklist_items_updated"
	KindVenueChecklistCompleted    Kind = "venue_checklist_completed"
	KindVenueChecklistDeleted      Kind = "venue_checklist_deleted"
)

var allKinds = []Kind{
	KindLogin,
	KindLogout,
	KindFileDownload,
	KindFileUpload,
	KindFileDelete,
	KindFileView,
	KindVenueChecklistCreated,
	KindVenueChecklistUpdated,
	KindVenueChecklistItemsUpdated,
	KindVenueChecklistCompleted,
	KindVenueChecklistDeleted,
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is a member of the enumeration.
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}
