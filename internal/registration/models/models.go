package models

// SourceKind identifies one of the backend services that originate
// registration records.
type SourceKind string

const (
	SourcePrivateLimited SourceKind = "private_limited"
	SourceProprietorship SourceKind = "proprietorship"
	SourceStartupIndia   SourceKind = "startup_india"
	SourceGST            SourceKind = "gst"
	SourceServices       SourceKind = "services" // generic "all services" store
)

// SourceOrder is the canonical fetch order. Deduplication keeps the first
// record seen in this order, so it must stay stable across runs.
var SourceOrder = []SourceKind{
	SourcePrivateLimited,
	SourceProprietorship,
	SourceStartupIndia,
	SourceGST,
	SourceServices,
}

// Rank returns the position of the source in SourceOrder, or len(SourceOrder)
// for unknown kinds so they sort after every known source.
func (k SourceKind) Rank() int {
	for i, s := range SourceOrder {
		if s == k {
			return i
		}
	}
	return len(SourceOrder)
}

// IsValid reports whether the kind is one of the known sources.
func (k SourceKind) IsValid() bool {
	return k.Rank() < len(SourceOrder)
}

func (k SourceKind) String() string {
	return string(k)
}

// Bucket is the coarse lifecycle status shown as a dashboard tab.
type Bucket string

const (
	BucketOpen       Bucket = "Open"
	BucketInProgress Bucket = "In progress"
	BucketResolved   Bucket = "Resolved"
)

// Buckets lists every lifecycle bucket in display order.
var Buckets = []Bucket{BucketOpen, BucketInProgress, BucketResolved}

// BadgeColor is the presentation color for a raw status. It is derived from
// the same effective status as Bucket but follows its own table.
type BadgeColor string

const (
	BadgeGreen  BadgeColor = "green"
	BadgeBlue   BadgeColor = "blue"
	BadgeYellow BadgeColor = "yellow"
	BadgeGray   BadgeColor = "gray"
)

// RawResponse is the outcome of a single source fetch. A failed fetch is
// represented by Success=false and a nil Body.
type RawResponse struct {
	Source  SourceKind
	Success bool
	Body    []byte
}

// FailedResponse builds the failure sentinel for a source.
func FailedResponse(source SourceKind) RawResponse {
	return RawResponse{Source: source}
}

// RegistrationRecord is the normalized shape shared by every source. Empty
// strings stand for absent values.
type RegistrationRecord struct {
	Source SourceKind `json:"source"`

	TicketID    string `json:"ticket_id,omitempty"`
	RecordID    string `json:"record_id,omitempty"`
	OwnerUserID string `json:"user_id"`

	PaymentStatus string `json:"payment_status,omitempty"`
	ServiceStatus string `json:"service_status,omitempty"`
	Status        string `json:"status,omitempty"`

	PaymentID         string `json:"payment_id,omitempty"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`

	PackageName  string   `json:"package_name,omitempty"`
	BusinessName string   `json:"business_name,omitempty"`
	PackagePrice *float64 `json:"package_price,omitempty"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// IdentityKey returns the value used to collapse duplicates: the ticket id
// when present, otherwise the record id.
func (r RegistrationRecord) IdentityKey() string {
	if r.TicketID != "" {
		return r.TicketID
	}
	return r.RecordID
}

// HasIdentity reports whether the record carries a ticket id or a record id.
func (r RegistrationRecord) HasIdentity() bool {
	return r.IdentityKey() != ""
}

// HasPaymentID reports whether either payment id is present.
func (r RegistrationRecord) HasPaymentID() bool {
	return r.PaymentID != "" || r.RazorpayPaymentID != ""
}

// ClassifiedRecord is a RegistrationRecord annotated for display.
type ClassifiedRecord struct {
	RegistrationRecord

	ServiceType   string     `json:"service_type"`
	Bucket        Bucket     `json:"lifecycle_bucket"`
	DisplayStatus string     `json:"display_status"`
	Badge         BadgeColor `json:"badge_color"`
}
