package sources

import "regsync/internal/registration/models"

// Adapter lists, for each normalized field, the raw keys a source may use for
// it. Keys are tried in order and the first non-empty value wins.
type Adapter struct {
	Kind models.SourceKind

	TicketID          []string
	RecordID          []string
	OwnerUserID       []string
	PaymentStatus     []string
	ServiceStatus     []string
	Status            []string
	PaymentID         []string
	RazorpayPaymentID []string
	PackageName       []string
	BusinessName      []string
	PackagePrice      []string
	CreatedAt         []string
	UpdatedAt         []string
}

// baseAdapter holds the snake_case and camelCase spellings every source has
// been seen to use.
func baseAdapter(kind models.SourceKind) Adapter {
	return Adapter{
		Kind:              kind,
		TicketID:          []string{"ticket_id", "ticketId"},
		RecordID:          []string{"id", "_id"},
		OwnerUserID:       []string{"user_id", "userId"},
		PaymentStatus:     []string{"payment_status", "paymentStatus"},
		ServiceStatus:     []string{"service_status", "serviceStatus"},
		Status:            []string{"status"},
		PaymentID:         []string{"payment_id", "paymentId"},
		RazorpayPaymentID: []string{"razorpay_payment_id", "razorpayPaymentId"},
		PackageName:       []string{"package_name", "packageName"},
		BusinessName:      []string{"business_name", "businessName"},
		PackagePrice:      []string{"package_price", "packagePrice", "price"},
		CreatedAt:         []string{"created_at", "createdAt"},
		UpdatedAt:         []string{"updated_at", "updatedAt"},
	}
}

var adapters = map[models.SourceKind]Adapter{
	models.SourcePrivateLimited: privateLimitedAdapter(),
	models.SourceProprietorship: proprietorshipAdapter(),
	models.SourceStartupIndia:   startupIndiaAdapter(),
	models.SourceGST:            gstAdapter(),
	models.SourceServices:       servicesAdapter(),
}

func privateLimitedAdapter() Adapter {
	a := baseAdapter(models.SourcePrivateLimited)
	a.RecordID = append(a.RecordID, "registration_id")
	a.BusinessName = append(a.BusinessName, "company_name", "proposed_company_name")
	return a
}

func proprietorshipAdapter() Adapter {
	a := baseAdapter(models.SourceProprietorship)
	a.RecordID = append(a.RecordID, "registration_id")
	a.BusinessName = append(a.BusinessName, "firm_name")
	return a
}

func startupIndiaAdapter() Adapter {
	a := baseAdapter(models.SourceStartupIndia)
	a.RecordID = append(a.RecordID, "registration_id")
	a.BusinessName = append(a.BusinessName, "startup_name", "entity_name")
	return a
}

func gstAdapter() Adapter {
	a := baseAdapter(models.SourceGST)
	a.RecordID = append(a.RecordID, "registration_id")
	a.BusinessName = append(a.BusinessName, "trade_name", "legal_name")
	return a
}

func servicesAdapter() Adapter {
	a := baseAdapter(models.SourceServices)
	a.RecordID = append(a.RecordID, "service_id")
	a.PackageName = append(a.PackageName, "service_name", "serviceName")
	a.PackagePrice = append(a.PackagePrice, "amount")
	return a
}

// AdapterFor returns the field mapping for a source kind. Unknown kinds get
// the base mapping.
func AdapterFor(kind models.SourceKind) Adapter {
	if a, ok := adapters[kind]; ok {
		return a
	}
	return baseAdapter(kind)
}
