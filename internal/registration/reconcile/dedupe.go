package reconcile

import "regsync/internal/registration/models"

// Dedupe keeps the first record for each identity key (ticket id, else record
// id). Callers pass records in canonical source order so the surviving copy is
// reproducible. Records without any identity are dropped.
func Dedupe(records []models.RegistrationRecord) []models.RegistrationRecord {
	seen := make(map[string]struct{}, len(records))
	result := make([]models.RegistrationRecord, 0, len(records))

	for _, rec := range records {
		key := rec.IdentityKey()
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, rec)
	}
	return result
}
