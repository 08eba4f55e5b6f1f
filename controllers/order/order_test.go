package orderControllers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nikhildhimann/zenmarket-ecommerce/models"
)

func TestUpdateOrderStatusHappyPath(t *testing.T) {
	db := openTestDB(t)
	_, _, addr := seedCheckoutScenario(t, db, "user-1")

	order, err := InitiateCheckout(db, "user-1", addr.ID)
	require.NoError(t, err)
	require.NoError(t, HandlePaymentCallback(db, nil, order.PaymentInfo.ID, GatewayStatusSuccess))

	order, err = UpdateOrderStatus(db, nil, order.ID, "Shipped")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusShipped, order.Status)
	require.Nil(t, order.DeliveredAt)

	order, err = UpdateOrderStatus(db, nil, order.ID, "Delivered")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusDelivered, order.Status)
	require.NotNil(t, order.DeliveredAt)
}

func TestUpdateOrderStatusDeliveredIsTerminal(t *testing.T) {
	db := openTestDB(t)
	_, _, addr := seedCheckoutScenario(t, db, "user-1")

	order, err := InitiateCheckout(db, "user-1", addr.ID)
	require.NoError(t, err)
	require.NoError(t, HandlePaymentCallback(db, nil, order.PaymentInfo.ID, GatewayStatusSuccess))
	_, err = UpdateOrderStatus(db, nil, order.ID, "Delivered")
	require.NoError(t, err)

	for _, target := range []string{"Processing", "Shipped", "Cancelled", "Delivered", "Pending Payment"} {
		_, err := UpdateOrderStatus(db, nil, order.ID, target)
		require.ErrorIs(t, err, ErrInvalidTransition, "target %s", target)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	_, _, addr := seedCheckoutScenario(t, db, "user-1")

	order, err := InitiateCheckout(db, "user-1", addr.ID)
	require.NoError(t, err)

	_, err = UpdateOrderStatus(db, nil, order.ID, "teleported")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	db := openTestDB(t)

	_, err := UpdateOrderStatus(db, nil, 12345, "Shipped")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelAfterPaymentRestocks(t *testing.T) {
	db := openTestDB(t)
	productA, productB, addr := seedCheckoutScenario(t, db, "user-1")

	order, err := InitiateCheckout(db, "user-1", addr.ID)
	require.NoError(t, err)
	require.NoError(t, HandlePaymentCallback(db, nil, order.PaymentInfo.ID, GatewayStatusSuccess))
	require.Equal(t, 3, stockOf(t, db, productA.ID))

	order, err = UpdateOrderStatus(db, nil, order.ID, "Cancelled")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, order.Status)

	require.Equal(t, 5, stockOf(t, db, productA.ID))
	require.Equal(t, 3, stockOf(t, db, productB.ID))
}

func TestCancelBeforePaymentDoesNotRestock(t *testing.T) {
	db := openTestDB(t)
	productA, _, addr := seedCheckoutScenario(t, db, "user-1")

	order, err := InitiateCheckout(db, "user-1", addr.ID)
	require.NoError(t, err)

	order, err = UpdateOrderStatus(db, nil, order.ID, "Cancelled")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, order.Status)

	// Nothing was ever decremented, so nothing comes back.
	require.Equal(t, 5, stockOf(t, db, productA.ID))
}
