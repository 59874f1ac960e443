package payment

import "time"

// SetClock replaces the time source of a service built by NewPaymentService.
func SetClock(s PaymentService, now func() time.Time) {
	s.(*paymentServiceImpl).now = now
}
