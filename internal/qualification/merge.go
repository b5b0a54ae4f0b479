package qualification

// Merge folds a fresh extraction into what is already known. A field that is
// already set is never replaced, so merging the same extraction twice is a
// no-op and the first value learned for a field is permanent.
func Merge(existing, incoming LeadFields) LeadFields {
	merged := existing
	if merged.Email == "" {
		merged.Email = incoming.Email
	}
	if merged.Phone == "" {
		merged.Phone = incoming.Phone
	}
	if merged.Budget <= 0 && incoming.Budget > 0 {
		merged.Budget = incoming.Budget
	}
	if merged.TimelineMonths <= 0 && incoming.TimelineMonths > 0 {
		merged.TimelineMonths = incoming.TimelineMonths
	}
	if merged.ZipCode == "" {
		merged.ZipCode = incoming.ZipCode
	}
	if merged.Name == "" {
		merged.Name = incoming.Name
	}
	if merged.ProjectType == "" {
		merged.ProjectType = incoming.ProjectType
	}
	return merged
}

// Learned returns the fields that incoming added on top of existing.
func Learned(existing, incoming LeadFields) []string {
	merged := Merge(existing, incoming)
	var added []string
	for _, field := range fieldOrder {
		if merged.Has(field) && !existing.Has(field) {
			added = append(added, field)
		}
	}
	return added
}
