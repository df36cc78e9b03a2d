// Package middleware provides HTTP middleware for storyhub.
//
// It includes:
//   - Request ids (X-Request-Id) propagated through the request context
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - Response compression (gzip)
package middleware
