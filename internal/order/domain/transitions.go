package domain

// IsTerminal reports whether no further status transitions are allowed.
// delivered and cancelled are the two terminal states; refunded can still
// move to cancelled.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition applies the legality rules of the status state machine:
// the target must be a known status, the source must not be terminal, and
// a transition must change the status.
func CanTransition(from, to OrderStatus) bool {
	if !to.Valid() {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	return from != to
}

// MaxRefundable is the amount still open for refunding.
func (o *Order) MaxRefundable() int64 {
	return o.TotalAmount - o.RefundAmount
}

// HoldsStock reports whether the order still owns decremented stock that
// a cancellation or full refund must hand back.
func (o *Order) HoldsStock() bool {
	return !o.StockRestored && o.Status != OrderDelivered
}
