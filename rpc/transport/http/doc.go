// Package http implements an HTTP based transport for the vertex requests
// between ranks. It trades the throughput of the framed socket transports
// for compatibility with plain HTTP infrastructure (proxies, load balancers
// in front of a rank).
//
// Every rank serves
//
//	GET  /ping     readiness probe used by Connect
//	POST /{rank}   one serialized request, answered with the serialized response
//
// Client endpoints are indexed by rank, a scheme-less endpoint gets http://.
// Connect fails unless every rank answers the probe. Every Send is a
// separate POST; HTTP/1.1 keep-alive reuses up to ConnectionsPerEndpoint idle
// connections per rank. Failed requests are retried RetryCount times.
package http
