// Package reconcile merges raw registration responses from every source into
// one ordered, classified timeline for a single user.
//
// The pipeline is a pure function of its inputs:
//
//	responses -> Normalize -> OwnedBy -> Visible -> Dedupe -> SortNewestFirst -> Classify
//
// Service wraps it with the concurrent source fan-out.
package reconcile

import (
	"sort"

	"regsync/internal/registration/classify"
	"regsync/internal/registration/models"
	"regsync/internal/registration/policy"
	"regsync/internal/registration/sources"
)

// Stats counts what each stage removed during one run.
type Stats struct {
	Normalized    int `json:"normalized"`
	Malformed     int `json:"malformed"`
	NotOwned      int `json:"not_owned"`
	NotVisible    int `json:"not_visible"`
	Duplicates    int `json:"duplicates"`
	Output        int `json:"output"`
	FailedFetches int `json:"failed_fetches"`
}

// Reconcile runs the pipeline over one snapshot of source responses.
// Responses are processed in canonical source order whatever their order in
// the slice.
func Reconcile(responses []models.RawResponse, userID string) []models.ClassifiedRecord {
	records, _ := reconcile(responses, userID)
	return records
}

func reconcile(responses []models.RawResponse, userID string) ([]models.ClassifiedRecord, Stats) {
	var stats Stats

	ordered := make([]models.RawResponse, len(responses))
	copy(ordered, responses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.Rank() < ordered[j].Source.Rank()
	})

	var visible []models.RegistrationRecord
	for _, resp := range ordered {
		if !resp.Success {
			stats.FailedFetches++
			continue
		}
		normalized, dropped := sources.NormalizeWithDropped(resp)
		stats.Normalized += len(normalized)
		stats.Malformed += dropped

		for _, rec := range normalized {
			if !policy.OwnedBy(rec, userID) {
				stats.NotOwned++
				continue
			}
			if !policy.Visible(rec) {
				stats.NotVisible++
				continue
			}
			visible = append(visible, rec)
		}
	}

	unique := Dedupe(visible)
	stats.Duplicates = len(visible) - len(unique)

	result := classify.ClassifyAll(SortNewestFirst(unique))
	stats.Output = len(result)
	return result, stats
}
