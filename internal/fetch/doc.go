// Package fetch provides the rate-limited HTTP fetcher shared by every
// network-facing component of the harvest pipeline.
//
// A Client performs one logical fetch per Get call: up to a configured
// number of attempts with linearly increasing backoff between them, and
// a politeness delay enforced between distinct successful fetches so
// the remote service is never hit faster than the configured budget.
//
// Design decision: We implement retry and pacing here rather than in
// each caller because the discovery and resolution stages must share
// one politeness budget. Two components pacing themselves independently
// would halve the effective spacing seen by the server.
package fetch
