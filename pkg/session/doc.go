// Package session provides the per-connection script-run context that a
// queryparams.Store publishes into.
//
// A Session records the last canonical query string sent to the browser and
// buffers outbound PageInfo notifications until the transport drains them:
//
//	sess := session.New(
//	    session.WithQueryString(r.URL.RawQuery),
//	    session.WithHeaders(r.Header),
//	    session.WithMetrics(metrics),
//	)
//	params := queryparams.New(queryparams.WithSession(sess))
//	params.Set("page", queryparams.Single("2"))
//
//	for _, msg := range sess.Drain() {
//	    // encode and write msg
//	}
//
// # Ordering
//
// Notifications are drained in exactly the order they were enqueued. The
// queue never coalesces or drops entries; Enqueue fails only after Close.
//
// # Manager
//
// Manager tracks the live sessions of a server by ID so that other request
// handlers can reach a session's headers or queue.
package session
