package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/customer/domain"
	"github.com/smallbiznis/facturo/internal/customer/repository"
	"github.com/smallbiznis/facturo/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateRequiresCompany(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CustomerInput{Company: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidCompany)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CustomerInput{
		Company:   "Acme Corp",
		VATNumber: "VAT-123",
		Currency:  "USD",
		Address:   "1 Main St",
		City:      "Springfield",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", got.Company)
	require.Equal(t, "VAT-123", got.VATNumber)
}

func TestGetByIDErrors(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(context.Background(), "123456789")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSameAsCustomerInfoCopiesBilling(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CustomerInput{
		Company:            "Acme Corp",
		Address:            "1 Main St",
		City:               "Springfield",
		State:              "IL",
		ZipCode:            "62701",
		Country:            "US",
		SameAsCustomerInfo: true,
		CopyBillingAddress: true,
	})
	require.NoError(t, err)
	require.Equal(t, "1 Main St", created.BillingAddress)
	require.Equal(t, "Springfield", created.BillingCity)
	require.Equal(t, "1 Main St", created.ShippingAddress)
	require.Equal(t, "US", created.ShippingCountry)
}

func TestUpdateReplacesFields(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CustomerInput{
		Company:  "Acme Corp",
		Currency: "USD",
		Phone:    "555-0100",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID.String(), domain.CustomerInput{
		Company:  "Acme Corporation",
		Currency: "EUR",
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Corporation", updated.Company)
	require.Equal(t, "EUR", updated.Currency)
	require.Empty(t, updated.Phone)

	got, err := svc.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, "Acme Corporation", got.Company)
	require.Empty(t, got.Phone)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.CustomerInput{Company: "Acme Corp"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID.String()))
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID.String()), domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), created.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListNewestFirstWithCursor(t *testing.T) {
	svc := newTestService(t)

	for _, company := range []string{"First Co", "Second Co", "Third Co"} {
		_, err := svc.Create(context.Background(), domain.CustomerInput{Company: company})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), domain.ListCustomerRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 2)
	require.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextPageToken)

	next, err := svc.List(context.Background(), domain.ListCustomerRequest{
		PageSize:  2,
		PageToken: resp.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, next.Customers, 1)
	require.False(t, next.HasMore)
}
