package quotation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ytf-quote/internal/catalog"
)

func TestValidateReportsMissingClient(t *testing.T) {
	q := newTestReducer().New(catalog.SizeXS)
	err := Validate(q)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "Client name is required", verr.Fields["clientName"])
	require.Equal(t, "Email is required", verr.Fields["clientEmail"])
	require.NotContains(t, verr.Fields, "businessSize")
}

func TestValidateRejectsMalformedEmail(t *testing.T) {
	r := newTestReducer()
	q := r.Apply(r.New(catalog.SizeXS), ChangeClient{Client: Client{Name: "Acme", Email: "not-an-email"}})
	err := Validate(q)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, map[string]string{"clientEmail": "Please enter a valid email address"}, verr.Fields)
	require.Contains(t, err.Error(), "clientEmail")
}

func TestValidateReportsItemFields(t *testing.T) {
	r := newTestReducer()
	q := r.Apply(r.New(catalog.SizeXS), ChangeClient{Client: Client{Name: "Acme", Email: "ops@acme.test"}})
	q.Items[0].Variant = " "
	q.BusinessSize = ""

	var verr *ValidationError
	require.True(t, errors.As(Validate(q), &verr))
	require.Equal(t, "Typeface variant is required", verr.Fields["items[0].typefaceVariant"])
	require.Equal(t, "Business size is required", verr.Fields["businessSize"])
}

func TestValidateAcceptsCompleteQuotation(t *testing.T) {
	r := newTestReducer()
	q := r.Apply(r.New(catalog.SizeL), ChangeClient{Client: Client{Name: "Acme", Email: "ops@acme.test"}})
	require.NoError(t, Validate(q))
}
