package realtime

import "expvar"

var (
	eventsReceived = expvar.NewInt("realtime_events_received")
	reconnects     = expvar.NewInt("realtime_reconnects")
	droppedEvents  = expvar.NewInt("realtime_events_dropped")
)
