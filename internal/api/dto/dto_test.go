package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/invoice-service/internal/domain"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := "  "
	got, err = ParseDate(&blank)
	require.NoError(t, err)
	assert.Nil(t, got)

	day := "2024-05-01"
	got, err = ParseDate(&day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *got)

	stamp := "2024-05-01T23:30:00-02:00"
	got, err = ParseDate(&stamp)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", got.Format(dateLayout))

	bad := "05/01/2024"
	_, err = ParseDate(&bad)
	assert.Error(t, err)
}

func TestNewInvoiceResponse(t *testing.T) {
	due := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	resp := NewInvoiceResponse(domain.Invoice{ID: "i1", DueDate: &due, Total: 12.5})

	require.NotNil(t, resp.DueDate)
	assert.Equal(t, "2024-06-30", *resp.DueDate)
	assert.NotNil(t, resp.Items)
	assert.Equal(t, 12.5, resp.Total)
	assert.Empty(t, NewInvoiceListResponse(nil))
}

func TestListQueryLimitOffset(t *testing.T) {
	limit, offset := ListQuery{Page: 3, PageSize: 10}.LimitOffset()
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, offset = ListQuery{Page: 3}.LimitOffset()
	assert.Zero(t, limit)
	assert.Zero(t, offset)
}
