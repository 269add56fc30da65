// Package access holds the identity model (Principal, Role, Grants) and the
// stateless access-control evaluator.
//
// Grants are role-scoped maps of category to permission strings: the owning
// UI groups permissions by feature area for display and audit, but
// authorization decisions flatten across categories. A permission is either
// held or not, regardless of where it was declared. All query functions are
// pure; the grant table itself is configuration supplied externally.
package access
