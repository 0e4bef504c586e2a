// package actions implements the one-shot operations of the create, manage and GTM pages
//
// Preconditions are checked before any request is made. A failed precondition is returned as a
// [*PreconditionError] and reported to the store so the UI can show it; backend failures are
// reported the same way and are never retried.
package actions
