// Package habitica is a minimal client for the Habitica-style task API:
// just enough surface to fetch a todo, create a tagged todo, and ensure the
// marker tag exists.
//
// Error classification matters more than the calls themselves. Only the
// service's own not-found signal becomes ErrNotFound; every other failure
// (network, non-404 status, malformed body) is ErrUnavailable. Callers rely
// on that split to tell "the instance was deleted" apart from "the service
// is unreachable"; conflating the two would fabricate lifecycle
// transitions.
package habitica
