package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	day := time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC)

	got, err := FormatInvoiceNumber(TypeGST, day, 7)
	require.NoError(t, err)
	assert.Equal(t, "GST-20250309-007", got)

	got, err = FormatInvoiceNumber(TypeNonGST, day, 123)
	require.NoError(t, err)
	assert.Equal(t, "NON-GST-20250309-123", got)

	// Sequences past three digits keep growing instead of wrapping.
	got, err = FormatInvoiceNumber(TypeGST, day, 1042)
	require.NoError(t, err)
	assert.Equal(t, "GST-20250309-1042", got)
}

func TestFormatInvoiceNumber_Rejections(t *testing.T) {
	day := time.Now()

	_, err := FormatInvoiceNumber(TypeGST, day, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = FormatInvoiceNumber(InvoiceType("vat"), day, 1)
	require.ErrorAs(t, err, &verr)
}
