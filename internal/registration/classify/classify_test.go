package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"regsync/internal/registration/models"
)

func TestServiceType(t *testing.T) {
	tests := []struct {
		name string
		rec  models.RegistrationRecord
		want string
	}{
		{name: "gst prefix", rec: models.RegistrationRecord{TicketID: "GST_100"}, want: LabelGST},
		{name: "startup prefix", rec: models.RegistrationRecord{TicketID: "SI_1"}, want: LabelStartupIndia},
		{name: "proprietorship prefix", rec: models.RegistrationRecord{TicketID: "PROP_9"}, want: LabelProprietorship},
		{name: "private limited prefix", rec: models.RegistrationRecord{TicketID: "PVT_5"}, want: LabelPrivateLimited},
		{name: "opc prefix", rec: models.RegistrationRecord{TicketID: "OPC_2"}, want: LabelOPC},
		{name: "llp prefix", rec: models.RegistrationRecord{TicketID: "LLP_3"}, want: LabelLLP},
		{name: "lower-case prefix is not a convention", rec: models.RegistrationRecord{TicketID: "gst_7"}, want: LabelFallback},
		{
			name: "lower-case prefix falls through to names",
			rec:  models.RegistrationRecord{TicketID: "pvt_7", PackageName: "GST Filing"},
			want: LabelGST,
		},
		{
			name: "prefix beats mislabeled package",
			rec:  models.RegistrationRecord{TicketID: "PVT_5", PackageName: "GST Filing"},
			want: LabelPrivateLimited,
		},
		{
			name: "unknown prefix falls through to names",
			rec:  models.RegistrationRecord{TicketID: "TM_1", PackageName: "Startup India Recognition"},
			want: LabelStartupIndia,
		},
		{
			name: "opc outranks private limited in names",
			rec:  models.RegistrationRecord{PackageName: "OPC Private Limited"},
			want: LabelOPC,
		},
		{
			name: "llp outranks gst",
			rec:  models.RegistrationRecord{PackageName: "LLP + GST combo"},
			want: LabelLLP,
		},
		{
			name: "business name is searched",
			rec:  models.RegistrationRecord{PackageName: "Basic", BusinessName: "Acme Private Limited"},
			want: LabelPrivateLimited,
		},
		{
			name: "proprietorship name",
			rec:  models.RegistrationRecord{BusinessName: "Sole Proprietorship of Ravi"},
			want: LabelProprietorship,
		},
		{name: "package name fallback", rec: models.RegistrationRecord{PackageName: "Trademark Filing"}, want: "Trademark Filing"},
		{name: "literal fallback", rec: models.RegistrationRecord{}, want: LabelFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ServiceType(tt.rec))
		})
	}
}

func TestEffectiveStatus(t *testing.T) {
	tests := []struct {
		name string
		rec  models.RegistrationRecord
		want string
	}{
		{name: "service status first", rec: models.RegistrationRecord{ServiceStatus: "WIP", Status: "x", PaymentStatus: "paid"}, want: "WIP"},
		{name: "status second", rec: models.RegistrationRecord{ServiceStatus: "  ", Status: "Submitted", PaymentStatus: "paid"}, want: "Submitted"},
		{name: "payment status third", rec: models.RegistrationRecord{PaymentStatus: "paid"}, want: "paid"},
		{name: "default", rec: models.RegistrationRecord{}, want: "Open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveStatus(tt.rec))
		})
	}
}

func TestBucket(t *testing.T) {
	tests := []struct {
		status string
		want   models.Bucket
	}{
		{"completed", models.BucketResolved},
		{"Completed", models.BucketResolved},
		{"WIP", models.BucketInProgress},
		{"Data Received", models.BucketInProgress},
		{"Awaiting Confirmation from the Govt", models.BucketInProgress},
		{"awaiting confirmation from the government", models.BucketInProgress},
		{"Data Pending from Client", models.BucketInProgress},
		{"in progress", models.BucketInProgress},
		{"submitted", models.BucketInProgress},
		{"Registered", models.BucketInProgress},
		{"Technical Issue", models.BucketInProgress},
		{"Payment Pending", models.BucketInProgress},
		{"payment completed", models.BucketOpen},
		{"paid", models.BucketOpen},
		{"Open", models.BucketOpen},
		{"", models.BucketOpen},
		{"something new", models.BucketOpen},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, Bucket(tt.status))
		})
	}
}

func TestBadge(t *testing.T) {
	tests := []struct {
		status string
		want   models.BadgeColor
	}{
		{"Completed", models.BadgeGreen},
		{"Payment Completed", models.BadgeGreen},
		{"wip", models.BadgeBlue},
		{"Data Received", models.BadgeBlue},
		{"awaiting confirmation from the govt", models.BadgeBlue},
		{"Data Pending from Client", models.BadgeBlue},
		{"Technical Issue", models.BadgeYellow},
		{"payment pending", models.BadgeYellow},
		{"awaiting confirmation from the government", models.BadgeGray},
		{"submitted", models.BadgeGray},
		{"", models.BadgeGray},
		{"unknown", models.BadgeGray},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, Badge(tt.status))
		})
	}
}

func TestBucketAndBadgeDisagree(t *testing.T) {
	tests := []struct {
		status     string
		wantBucket models.Bucket
		wantBadge  models.BadgeColor
	}{
		{"Payment Completed", models.BucketOpen, models.BadgeGreen},
		{"awaiting confirmation from the government", models.BucketInProgress, models.BadgeGray},
		{"submitted", models.BucketInProgress, models.BadgeGray},
		{"Payment Pending", models.BucketInProgress, models.BadgeYellow},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.wantBucket, Bucket(tt.status))
			assert.Equal(t, tt.wantBadge, Badge(tt.status))
		})
	}
}

func TestBucketIsTotal(t *testing.T) {
	inputs := []string{"", " ", "\t", "Ω", "COMPLETED ", "null", "undefined", "0"}
	for _, s := range inputs {
		b := Bucket(s)
		assert.Contains(t, models.Buckets, b, "status %q", s)
	}
}

func TestClassify(t *testing.T) {
	t.Run("data pending from client is in progress and blue", func(t *testing.T) {
		got := Classify(models.RegistrationRecord{TicketID: "GST_1", ServiceStatus: "Data Pending from Client"})

		assert.Equal(t, models.BucketInProgress, got.Bucket)
		assert.Equal(t, models.BadgeBlue, got.Badge)
		assert.Equal(t, "Data Pending from Client", got.DisplayStatus)
		assert.Equal(t, LabelGST, got.ServiceType)
	})

	t.Run("no status signal", func(t *testing.T) {
		got := Classify(models.RegistrationRecord{RecordID: "1"})

		assert.Equal(t, models.BucketOpen, got.Bucket)
		assert.Equal(t, models.BadgeGray, got.Badge)
		assert.Equal(t, "Open", got.DisplayStatus)
		assert.Equal(t, LabelFallback, got.ServiceType)
	})

	t.Run("classify all keeps order", func(t *testing.T) {
		got := ClassifyAll([]models.RegistrationRecord{{TicketID: "B"}, {TicketID: "A"}})
		assert.Equal(t, "B", got[0].TicketID)
		assert.Equal(t, "A", got[1].TicketID)
	})
}
