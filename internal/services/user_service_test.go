package services_test

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_CheckoutPreferences(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	svc := services.NewUserService(users)

	res, err := svc.UpdateAddress(ctx, services.Identity{SessionCartID: "s1"}, *testAddress())
	require.NoError(t, err)
	assert.Equal(t, services.ReasonAuthenticationRequired, res.Reason)

	users.On("UpdateAddress", mock.Anything, "u1", *testAddress()).Return(nil).Once()
	res, err = svc.UpdateAddress(ctx, customer, *testAddress())
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = svc.UpdatePaymentMethod(ctx, customer, models.PaymentMethod("Barter"))
	require.NoError(t, err)
	assert.Equal(t, services.ReasonInvalidPaymentMethod, res.Reason)

	users.On("UpdatePaymentMethod", mock.Anything, "u1", models.PaymentMethodCard).Return(nil).Once()
	res, err = svc.UpdatePaymentMethod(ctx, customer, models.PaymentMethodCard)
	require.NoError(t, err)
	assert.True(t, res.Success)

	users.On("GetByID", mock.Anything, "u2").Return(nil, notFound("user")).Once()
	_, res, err = svc.Profile(ctx, stranger)
	require.NoError(t, err)
	assert.Equal(t, services.ReasonNotFound, res.Reason)
	users.AssertExpectations(t)
}

func TestReportService_Overview(t *testing.T) {
	ctx := context.Background()
	reports := new(MockReportRepository)
	svc := services.NewReportService(reports)

	_, res, err := svc.Overview(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, services.ReasonAuthorizationDenied, res.Reason)
	reports.AssertNotCalled(t, "Overview", mock.Anything, mock.Anything)

	reports.On("Overview", mock.Anything, services.LatestSalesCount).Return(&repositories.Overview{OrdersCount: 3}, nil).Once()
	overview, res, err := svc.Overview(ctx, admin)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int64(3), overview.OrdersCount)
	reports.AssertExpectations(t)
}
