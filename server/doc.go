/*
Package server provides the JSON API that stores calendar events and applies
series-wide mutations.

# Basic Usage

The simplest way to use this package is with the provided in-memory storage:

	srv, err := server.New(server.Config{Storage: memory.New()})
	if err != nil {
		log.Fatal(err)
	}
	http.ListenAndServe(":8080", srv)

# Routes

	GET    /health                            liveness probe
	GET    /api/events                        all stored events
	GET    /api/events.ics                    all stored events as an iCalendar file
	POST   /api/events                        create a single event
	POST   /api/events-list                   create every occurrence of a series
	PUT    /api/events/{id}                   replace one occurrence
	DELETE /api/events/{id}                   delete one occurrence
	PUT    /api/recurring-events/{seriesId}   patch every member of a series
	DELETE /api/recurring-events/{seriesId}   delete every member of a series

Errors are returned as {"error": "..."} with a status derived from the
storage and series sentinel errors.

# Custom Storage Backend

Any storage.Storage implementation can back the server. UpdateSeries must
apply its mutation to every member or to none of them; see storage/storagetest
for the behaviour a backend is expected to pass.

# Change Notifications

When Config.Publisher is set, every successful write publishes a
notify.Change. Publish failures are logged and never fail the request.
*/
package server
