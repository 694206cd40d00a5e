package reconcile

import (
	"regsync/internal/registration/models"
	"regsync/internal/registration/policy"
)

// LatestByBucket returns the first record seen for each lifecycle bucket.
// Given the pipeline's newest-first output that is the most recent one.
// Buckets with no records are absent from the map.
func LatestByBucket(records []models.ClassifiedRecord) map[models.Bucket]models.ClassifiedRecord {
	latest := make(map[models.Bucket]models.ClassifiedRecord, len(models.Buckets))
	for _, rec := range records {
		if _, ok := latest[rec.Bucket]; ok {
			continue
		}
		latest[rec.Bucket] = rec
	}
	return latest
}

// PaidOnly keeps the records that belong on the subscriptions view, in input
// order. Admin-pending records are never included.
func PaidOnly(records []models.ClassifiedRecord) []models.ClassifiedRecord {
	result := make([]models.ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		if policy.IsSubscription(rec.RegistrationRecord) {
			result = append(result, rec)
		}
	}
	return result
}
