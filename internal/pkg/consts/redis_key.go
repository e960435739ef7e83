package consts

const (
	CoupleMetrics7DaysKey  = "couple:metrics:7days:"
	CoupleMetrics30DaysKey = "couple:metrics:30days:"
	CouplePatternKey       = "couple:pattern:"
	CoupleDirtyKey         = "couple:series:dirty"
)

const (
	CoupleSeriesLock = "lock:couple:series:"
)
