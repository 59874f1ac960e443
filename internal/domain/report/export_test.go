package report

import "time"

func SetClock(s ReportService, now func() time.Time) {
	s.(*reportServiceImpl).now = now
}
