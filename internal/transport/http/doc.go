// Package http implements the HTTP handlers of the dashboard service.
// Handlers stay thin: they parse and validate the request, call the
// dashboard service and format the response.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → DashboardService
//	                                              ↓
//	HTTP Response ← Handler ← View / Export / chart ←┘
//
// # Filter Query
//
// Every dashboard endpoint accepts the same query string. Each filter
// dimension may be repeated:
//
//	/api/dashboard?sede=A&sede=B&curso=Math&source=local
//
// An absent dimension is unrestricted. A dimension given only with empty
// values (sede=) selects nothing, which yields the empty-filter problem.
// Unknown parameters are rejected with a validation problem.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/data/empty-filter",
//	    "title": "Empty Selection",
//	    "status": 422,
//	    "detail": "No rows match the current filters. Adjust the selection and try again.",
//	    "instance": "/api/dashboard"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a mocked service interface and
// against a real DashboardService over a temporary data file.
package http
