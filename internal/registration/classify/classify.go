// Package classify derives the display annotations of a registration record:
// its service type, lifecycle bucket, display status and badge color. All
// functions are pure and total.
package classify

import "regsync/internal/registration/models"

// Classify annotates a record for display.
func Classify(rec models.RegistrationRecord) models.ClassifiedRecord {
	status := EffectiveStatus(rec)
	return models.ClassifiedRecord{
		RegistrationRecord: rec,
		ServiceType:        ServiceType(rec),
		Bucket:             Bucket(status),
		DisplayStatus:      status,
		Badge:              Badge(status),
	}
}

// ClassifyAll annotates every record, preserving order.
func ClassifyAll(records []models.RegistrationRecord) []models.ClassifiedRecord {
	result := make([]models.ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		result = append(result, Classify(rec))
	}
	return result
}
