// Package server hosts query-params sessions over WebSocket.
//
// Each WebSocket connection gets its own session.Session and
// queryparams.Store. The application script runs once on connect and again
// whenever the client reports that the browser URL changed. After every run
// the session's queued PageInfo notifications are written to the client as
// binary FramePageInfo frames, in the order the mutations happened.
//
// # Example Usage
//
//	srv := server.New(server.DefaultConfig(), func(ctx context.Context, s *session.Session, params *queryparams.Store) error {
//	    page, err := params.Get("page")
//	    if err != nil {
//	        return params.Set("page", queryparams.Single("1"))
//	    }
//	    s.Logger().Info("page requested", "page", page)
//	    return nil
//	})
//	srv.Run(ctx)
//
// # Routes
//
//   - GET /healthz: liveness probe
//   - GET /metrics: Prometheus metrics
//   - GET <Config.Path>: WebSocket endpoint; the request's query string is the
//     page's initial query string
package server
