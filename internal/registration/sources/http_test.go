package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regsync/internal/registration/models"
)

func TestHTTPSourceFetch(t *testing.T) {
	t.Run("requests the user registrations path", func(t *testing.T) {
		var gotPath, gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`[{"ticket_id":"GST_1"}]`))
		}))
		defer srv.Close()

		src, err := NewHTTPSource(models.SourceGST, srv.URL+"/", WithAuthToken("svc-token"))
		require.NoError(t, err)

		body, err := src.Fetch(context.Background(), "42")
		require.NoError(t, err)
		assert.Equal(t, `[{"ticket_id":"GST_1"}]`, string(body))
		assert.Equal(t, "/gst/user-registrations/42", gotPath)
		assert.Equal(t, "Bearer svc-token", gotAuth)
	})

	t.Run("services source uses the admin path", func(t *testing.T) {
		src, err := NewHTTPSource(models.SourceServices, "http://services.test")
		require.NoError(t, err)
		assert.Equal(t, "http://services.test/admin/user-services/a%2Fb", src.URL("a/b"))
	})

	t.Run("non-2xx is a bad status error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		src, err := NewHTTPSource(models.SourcePrivateLimited, srv.URL)
		require.NoError(t, err)

		_, err = src.Fetch(context.Background(), "1")
		require.Error(t, err)
		assert.Equal(t, ErrorBadStatus, Category(err))

		var se *SourceError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusBadGateway, se.StatusCode)
		assert.Equal(t, models.SourcePrivateLimited, se.Source)
	})

	t.Run("slow source times out", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		src, err := NewHTTPSource(models.SourceStartupIndia, srv.URL, WithTimeout(50*time.Millisecond))
		require.NoError(t, err)

		_, err = src.Fetch(context.Background(), "1")
		require.Error(t, err)
		assert.Equal(t, ErrorTimeout, Category(err))
	})

	t.Run("unreachable source is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		src, err := NewHTTPSource(models.SourceProprietorship, url)
		require.NoError(t, err)

		_, err = src.Fetch(context.Background(), "1")
		require.Error(t, err)
		assert.Equal(t, ErrorTransport, Category(err))
	})
}

func TestNewHTTPSourceValidation(t *testing.T) {
	_, err := NewHTTPSource(models.SourceKind("llp"), "http://x.test")
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = NewHTTPSource(models.SourceGST, "")
	assert.Error(t, err)

	_, err = NewHTTPSource(models.SourceGST, "http://x.test", WithPath("/gst/registrations"))
	assert.Error(t, err)
}

type stubSource struct {
	kind models.SourceKind
}

func (s stubSource) Kind() models.SourceKind { return s.kind }

func (s stubSource) Fetch(context.Context, string) ([]byte, error) { return nil, nil }

func TestRegistryOrdered(t *testing.T) {
	reg, err := NewRegistry(
		stubSource{kind: models.SourceServices},
		stubSource{kind: models.SourceGST},
		stubSource{kind: models.SourcePrivateLimited},
	)
	require.NoError(t, err)

	var kinds []models.SourceKind
	for _, s := range reg.Ordered() {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []models.SourceKind{models.SourcePrivateLimited, models.SourceGST, models.SourceServices}, kinds)

	err = reg.Register(stubSource{kind: models.SourceGST})
	assert.ErrorIs(t, err, ErrSourceRegistered)

	err = reg.Register(stubSource{kind: "opc"})
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.Equal(t, 3, reg.Len())
}
