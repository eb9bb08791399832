// Package auth provides authentication and authorization for the retail
// service: credential checks, JWT issuance and verification, and fiber route
// guards scoped by role and store.
//
// Principals:
//   - A Principal is the verified identity carried by a token: user id, roles
//     and an optional store id. Admins are global; managers and sellers are
//     bound to a single store.
//   - Auther.Login checks credentials against a UserStore and signs a token.
//     Auther.Verify parses it back into a Principal.
//
// Transport policy:
//   - In production tokens travel only in an HttpOnly cookie. In development
//     the Authorization header is accepted as well and login also echoes the
//     token in the response body. See jwtware.TransportPolicy.
//
// Guards:
//   - RouteAuthenticator.ProtectedRoute builds a per route guard from
//     AuthorizationOptions. Missing or invalid tokens are UNAUTHENTICATED,
//     role or store mismatches are FORBIDDEN. ErrorHandler renders every
//     DomainError as the standard response envelope.
//
// Activity sinks:
//   - ActivitySink receives login, logout and access denied events. Sinks run
//     best-effort (errors are logged) so metrics and audit logs never block
//     authentication.
package auth
