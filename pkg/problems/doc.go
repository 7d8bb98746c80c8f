// Package problems provides judge problems for the Gavel backend.
//
// # Overview
//
// A problem lives inside exactly one problem set and is addressed by a
// per-set numeric ID assigned at creation. Each problem carries three
// permission controls: view, submit and modify. Creation assigns the next
// ID and bumps the owning set's problemCount inside one transaction.
//
// # Related Packages
//
//   - pkg/problemsets: owning collections and their problemCount counter
//   - pkg/permission: normalization and evaluation of the triple
package problems
