package orders

import (
	"testing"

	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from enums.OrderStatus
		to   enums.OrderStatus
		want bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusProcessing, true},
		{enums.OrderStatusPending, enums.OrderStatusCanceled, true},
		{enums.OrderStatusPending, enums.OrderStatusFinished, false},
		{enums.OrderStatusPending, enums.OrderStatusDelivery, false},
		{enums.OrderStatusProcessing, enums.OrderStatusPacking, true},
		{enums.OrderStatusProcessing, enums.OrderStatusDelivery, true},
		{enums.OrderStatusProcessing, enums.OrderStatusFinished, true},
		{enums.OrderStatusProcessing, enums.OrderStatusCanceled, false},
		{enums.OrderStatusPacking, enums.OrderStatusDelivery, true},
		{enums.OrderStatusPacking, enums.OrderStatusFinished, true},
		{enums.OrderStatusPacking, enums.OrderStatusPending, false},
		{enums.OrderStatusDelivery, enums.OrderStatusFinished, true},
		{enums.OrderStatusDelivery, enums.OrderStatusPacking, false},
		{enums.OrderStatusFinished, enums.OrderStatusPending, false},
		{enums.OrderStatusCanceled, enums.OrderStatusProcessing, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, status := range []enums.OrderStatus{enums.OrderStatusFinished, enums.OrderStatusCanceled} {
		if next := NextStatuses(status); len(next) != 0 {
			t.Fatalf("terminal status %s has exits %v", status, next)
		}
	}
}
