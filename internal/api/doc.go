// Package api holds the backend models and the client used to fetch them.
//
// Service is the narrow contract screens depend on. HTTPService talks to the
// JSON API; NewUnavailableService stands in when no base URL is configured,
// and apitest.MockService serves fixtures in tests.
package api
