// nyanpasu-service - privileged background service for the nyanpasu client
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/libnyanpasu/nyanpasu-service

/*
Package middleware provides HTTP middleware components for the application.

The package holds one component, RequestID, which tags every request
with a UUID-based identifier for log correlation. It provides no
compression, performance monitoring or metrics middleware.

Usage Example - Request ID:

	import "github.com/libnyanpasu/nyanpasu-service/internal/middleware"


	// Request ID middleware
	http.HandleFunc("/api/v1/logs",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := r.Context().Value(middleware.RequestIDKey).(string)
	    log.Printf("[%s] Processing request", requestID)
	}

Request ID Details:

RequestID reuses a non-empty incoming X-Request-ID header and otherwise
generates a UUID v4. The ID is echoed in the X-Request-ID response
header, stored in the request context under RequestIDKey (read it back
with GetRequestID), and also placed in the logging package's context
together with a newly generated correlation ID.

Thread Safety:

RequestID keeps no shared state; each request's ID lives in its own
context.Context.

See Also:

  - internal/logging: context-scoped request and correlation IDs
*/
package middleware
