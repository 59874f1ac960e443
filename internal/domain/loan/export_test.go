package loan

import "time"

// SetClock replaces the time source of a service built by NewLoanService.
func SetClock(s LoanService, now func() time.Time) {
	s.(*loanServiceImpl).now = now
}
