// Package auth provides authentication and account recovery for an admin
// backend: JWT issuance and validation, credential verification backed by
// Bun repositories, HTTP handlers, and route-level access policies.
//
// Login and tokens:
//   - Auther verifies credentials through an IdentityProvider and mints HS256
//     session tokens that carry the subject role. Lookup and password failures
//     collapse into ErrInvalidCredentials so the endpoint cannot be used to
//     enumerate accounts.
//   - TokenService also issues short-lived reset tokens with a distinct
//     purpose claim. The request gate only accepts session tokens, so a reset
//     token can never authenticate an API call.
//
// Account recovery:
//   - InitializePasswordResetHandler emails a six digit verification code and
//     stores a single challenge per account; reissuing replaces the previous
//     code. ResendVerificationHandler throttles repeat sends inside a sliding
//     window, and FinalizePasswordResetHandler consumes the challenge and
//     rotates the password in one transaction.
//   - ChallengeJanitor sweeps expired challenges in the background.
//
// Request handling:
//   - RequestGate binds validated claims to the request without rejecting
//     anything; RequireAccess evaluates a RoutePolicy and answers 401 or 403.
//     RegisterAuthRoutes mounts the login, registration, and recovery
//     endpoints on a Fiber router.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     command handlers to describe login, registration, and password reset
//     events. Sinks run best-effort (errors are logged) so you can forward to
//     a database or queue without blocking authentication.
package auth
