// Package handlers provides the HTTP handlers for storyhub.
//
// It includes handlers for:
//   - Login, registration, logout and per-user settings
//   - Browsing books, chapters, authors and albums
//   - Favorites and album visit tracking
//   - The author dashboard and content management
//   - The admin dashboard and visit export
//   - Health checks and version information
//
// Views are rendered as JSON. Every view carries the current user and any
// pending flash messages. Form posts answer with 303 redirects.
package handlers
