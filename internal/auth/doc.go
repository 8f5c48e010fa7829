// Package auth provides authentication and authorisation for drawhub.
//
// It implements a 2-tier role model (user → admin) with:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - Stateless JWT session tokens carrying identity, email and role
//   - Explicit per-user room grants stored in room_access
//   - A room policy that resolves every room-scoped request to an
//     explicit Allow/Deny decision
//
// Room scoping uses a "zero access by default, grant explicitly" model:
// a user with no grants cannot touch any room. An admin must
// deliberately grant access to specific rooms. The admin role bypasses
// room scoping entirely.
//
// Token validation is pure: no database lookup happens per request, so
// a deleted or demoted user's outstanding token stays valid until it
// expires. That staleness window is bounded by the configured token TTL
// and is an accepted trade-off, not a bug.
package auth
