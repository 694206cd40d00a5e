package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regsync/internal/registration/models"
)

func ok(kind models.SourceKind, body string) models.RawResponse {
	return models.RawResponse{Source: kind, Success: true, Body: []byte(body)}
}

func TestNormalizeEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		resp models.RawResponse
		want int
	}{
		{name: "bare array", resp: ok(models.SourceGST, `[{"ticket_id":"GST_1","user_id":"1"}]`), want: 1},
		{name: "data envelope", resp: ok(models.SourceGST, `{"success":true,"data":[{"ticket_id":"GST_1"},{"id":7}]}`), want: 2},
		{name: "failure envelope", resp: ok(models.SourceGST, `{"success":false,"data":[{"ticket_id":"GST_1"}]}`), want: 0},
		{name: "failed fetch", resp: models.FailedResponse(models.SourceGST), want: 0},
		{name: "malformed json", resp: ok(models.SourceGST, `[{"ticket_id":`), want: 0},
		{name: "json null", resp: ok(models.SourceGST, `null`), want: 0},
		{name: "object without data", resp: ok(models.SourceGST, `{"message":"ok"}`), want: 0},
		{name: "data is not an array", resp: ok(models.SourceGST, `{"data":{"ticket_id":"GST_1"}}`), want: 0},
		{name: "empty body", resp: ok(models.SourceGST, ``), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Normalize(tt.resp)
			require.NotNil(t, records)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestNormalizeDropsRowsWithoutIdentity(t *testing.T) {
	body := `[
		{"ticket_id":"PVT_1","user_id":"5"},
		{"user_id":"5","payment_status":"paid"},
		"not an object",
		{"id":"   ","ticket_id":""},
		{"_id":"abc","user_id":"5"}
	]`

	records, dropped := NormalizeWithDropped(ok(models.SourcePrivateLimited, body))

	require.Len(t, records, 2)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, "PVT_1", records[0].TicketID)
	assert.Equal(t, "abc", records[1].RecordID)
}

func TestNormalizeFieldMapping(t *testing.T) {
	t.Run("snake case fields", func(t *testing.T) {
		body := `[{
			"ticket_id": "GST_100",
			"id": 12,
			"user_id": 42,
			"payment_status": "paid",
			"service_status": "WIP",
			"status": "active",
			"payment_id": "pay_1",
			"razorpay_payment_id": "rzp_1",
			"package_name": "GST Basic",
			"trade_name": "Acme Traders",
			"package_price": 1499.5,
			"created_at": "2024-03-01T10:00:00Z",
			"updated_at": "2024-03-02T10:00:00Z"
		}]`

		records := Normalize(ok(models.SourceGST, body))
		require.Len(t, records, 1)
		rec := records[0]

		assert.Equal(t, models.SourceGST, rec.Source)
		assert.Equal(t, "GST_100", rec.TicketID)
		assert.Equal(t, "12", rec.RecordID)
		assert.Equal(t, "42", rec.OwnerUserID)
		assert.Equal(t, "paid", rec.PaymentStatus)
		assert.Equal(t, "WIP", rec.ServiceStatus)
		assert.Equal(t, "active", rec.Status)
		assert.Equal(t, "pay_1", rec.PaymentID)
		assert.Equal(t, "rzp_1", rec.RazorpayPaymentID)
		assert.Equal(t, "GST Basic", rec.PackageName)
		assert.Equal(t, "Acme Traders", rec.BusinessName)
		require.NotNil(t, rec.PackagePrice)
		assert.InDelta(t, 1499.5, *rec.PackagePrice, 0.0001)
		assert.Equal(t, "2024-03-01T10:00:00Z", rec.CreatedAt)
		assert.Equal(t, "2024-03-02T10:00:00Z", rec.UpdatedAt)
	})

	t.Run("camel case fields", func(t *testing.T) {
		body := `{"data":[{
			"ticketId": "SI_3",
			"userId": "7",
			"paymentStatus": "pending",
			"serviceStatus": "Submitted",
			"razorpayPaymentId": "rzp_9",
			"packageName": "Startup Pro",
			"startup_name": "Rocket Labs",
			"packagePrice": "999",
			"createdAt": "2024-01-01"
		}]}`

		records := Normalize(ok(models.SourceStartupIndia, body))
		require.Len(t, records, 1)
		rec := records[0]

		assert.Equal(t, "SI_3", rec.TicketID)
		assert.Equal(t, "7", rec.OwnerUserID)
		assert.Equal(t, "pending", rec.PaymentStatus)
		assert.Equal(t, "Submitted", rec.ServiceStatus)
		assert.Equal(t, "rzp_9", rec.RazorpayPaymentID)
		assert.Equal(t, "Rocket Labs", rec.BusinessName)
		require.NotNil(t, rec.PackagePrice)
		assert.InDelta(t, 999, *rec.PackagePrice, 0.0001)
		assert.Equal(t, "2024-01-01", rec.CreatedAt)
	})

	t.Run("services source names the package by service", func(t *testing.T) {
		body := `[{"service_id":"s-1","user_id":"3","service_name":"LLP Filing","amount":5000}]`

		records := Normalize(ok(models.SourceServices, body))
		require.Len(t, records, 1)
		assert.Equal(t, "s-1", records[0].RecordID)
		assert.Equal(t, "LLP Filing", records[0].PackageName)
		require.NotNil(t, records[0].PackagePrice)
		assert.InDelta(t, 5000, *records[0].PackagePrice, 0.0001)
	})

	t.Run("numeric ids render as plain decimals", func(t *testing.T) {
		body := `[{"id":42.0,"user_id":1e2},{"id":"x","user_id":12345678901234}]`

		records := Normalize(ok(models.SourceProprietorship, body))
		require.Len(t, records, 2)
		assert.Equal(t, "42", records[0].RecordID)
		assert.Equal(t, "100", records[0].OwnerUserID)
		assert.Equal(t, "12345678901234", records[1].OwnerUserID)
	})

	t.Run("first non-empty candidate wins", func(t *testing.T) {
		body := `[{"ticket_id":"","ticketId":"PROP_2","payment_id":"","paymentId":"p-2"}]`

		records := Normalize(ok(models.SourceProprietorship, body))
		require.Len(t, records, 1)
		assert.Equal(t, "PROP_2", records[0].TicketID)
		assert.Equal(t, "p-2", records[0].PaymentID)
	})

	t.Run("payment ids must be strings", func(t *testing.T) {
		body := `[
			{"id":1,"payment_id":false,"razorpay_payment_id":null},
			{"id":2,"payment_id":0,"razorpay_payment_id":0},
			{"id":3,"payment_id":true,"razorpayPaymentId":12345},
			{"id":4,"payment_id":"  ","razorpay_payment_id":"rzp_4"}
		]`

		records := Normalize(ok(models.SourceServices, body))
		require.Len(t, records, 4)
		for _, rec := range records[:3] {
			assert.Empty(t, rec.PaymentID, "record %s", rec.RecordID)
			assert.Empty(t, rec.RazorpayPaymentID, "record %s", rec.RecordID)
			assert.False(t, rec.HasPaymentID(), "record %s", rec.RecordID)
		}
		assert.Empty(t, records[3].PaymentID)
		assert.Equal(t, "rzp_4", records[3].RazorpayPaymentID)
	})

	t.Run("missing price stays nil", func(t *testing.T) {
		records := Normalize(ok(models.SourceGST, `[{"ticket_id":"GST_5","package_price":"n/a"}]`))
		require.Len(t, records, 1)
		assert.Nil(t, records[0].PackagePrice)
	})
}

func TestAdapterForUnknownKindUsesBase(t *testing.T) {
	a := AdapterFor(models.SourceKind("unknown"))
	assert.Equal(t, []string{"ticket_id", "ticketId"}, a.TicketID)
}
