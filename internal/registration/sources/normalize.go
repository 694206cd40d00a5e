package sources

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"regsync/internal/registration/models"
)

// Normalize converts one raw source response into registration records.
// It never fails: a failed fetch, a malformed body or an unexpected envelope
// all produce an empty slice.
func Normalize(resp models.RawResponse) []models.RegistrationRecord {
	records, _ := NormalizeWithDropped(resp)
	return records
}

// NormalizeWithDropped is Normalize that also reports how many raw rows were
// discarded because they were not objects or carried no identity.
func NormalizeWithDropped(resp models.RawResponse) ([]models.RegistrationRecord, int) {
	if !resp.Success {
		return []models.RegistrationRecord{}, 0
	}
	rows := decodeRows(resp.Body)
	adapter := AdapterFor(resp.Source)

	records := make([]models.RegistrationRecord, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			dropped++
			continue
		}
		rec := adapter.apply(fields)
		if !rec.HasIdentity() {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	return records, dropped
}

// decodeRows unwraps the accepted envelopes: a bare array, or an object whose
// "data" member is an array. An object with success=false is a failure.
func decodeRows(body []byte) []any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil
	}

	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		if success, ok := v["success"].(bool); ok && !success {
			return nil
		}
		if data, ok := v["data"].([]any); ok {
			return data
		}
	}
	return nil
}

func (a Adapter) apply(fields map[string]any) models.RegistrationRecord {
	return models.RegistrationRecord{
		Source:            a.Kind,
		TicketID:          firstString(fields, a.TicketID),
		RecordID:          firstString(fields, a.RecordID),
		OwnerUserID:       firstString(fields, a.OwnerUserID),
		PaymentStatus:     firstString(fields, a.PaymentStatus),
		ServiceStatus:     firstString(fields, a.ServiceStatus),
		Status:            firstString(fields, a.Status),
		PaymentID:         firstText(fields, a.PaymentID),
		RazorpayPaymentID: firstText(fields, a.RazorpayPaymentID),
		PackageName:       firstString(fields, a.PackageName),
		BusinessName:      firstString(fields, a.BusinessName),
		PackagePrice:      firstNumber(fields, a.PackagePrice),
		CreatedAt:         firstString(fields, a.CreatedAt),
		UpdatedAt:         firstString(fields, a.UpdatedAt),
	}
}

func firstString(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if s := stringValue(fields[key]); s != "" {
			return s
		}
	}
	return ""
}

// firstText reads only JSON strings. Payment ids count as present only when
// a source sends a non-empty string; false, 0 and null mean no payment.
func firstText(fields map[string]any, keys []string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok {
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstNumber(fields map[string]any, keys []string) *float64 {
	for _, key := range keys {
		if f, ok := numberValue(fields[key]); ok {
			return &f
		}
	}
	return nil
}

// stringValue renders scalar JSON values the way the portal compares them:
// numbers in plain decimal (42.0 becomes "42"), strings trimmed.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func numberValue(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
