// Package errs defines the semantic error kinds returned by the entity
// services.
//
// # Overview
//
// Every exported service operation either returns a definite result or fails
// with exactly one of these kinds. Infrastructure failures (database, cache)
// are wrapped with fmt.Errorf and are deliberately NOT one of these kinds;
// the HTTP layer maps them to a generic 500 response.
//
// # Error Kinds
//
//   - NotFoundError: a lookup matched nothing
//   - DuplicateError: a create collided with an existing object
//   - InvalidInputError: a request field failed validation
//   - AuthError: AlreadyLoggedIn, NotLoggedIn, PermissionDenied, WrongPassword
//
// All kinds serialize to the wire format consumed by clients, e.g.
//
//	{"error":"DuplicateError","objectType":"User","match":{"userName":"Menci"}}
//
// # Usage Example
//
//	user, err := svc.FindByUserName(ctx, name)
//	var nf *errs.NotFoundError
//	if errors.As(err, &nf) {
//		// 404 path
//	}
package errs
