// Package session issues and resolves login sessions.
//
// A Store maps opaque tokens to user ids. SQLStore keeps sessions in the
// application database; RedisStore keeps them in Redis with a TTL so that
// several server instances can share logins. Resolver turns a token into the
// request's authz.Actor.
package session
