// Package models defines the core domain models for Racha AI.
//
// # Models
//
//   - Group: A shared-expense group. Groups are throwaway by design: anyone
//     with the invite link can join, and inactive groups are purged after a
//     retention window.
//   - User: A participant in exactly one group, authenticated by a short PIN.
//     The first user of a group is its admin.
//   - Expense: A payment made by one user on behalf of a subset of the group.
//     A settlement is just an expense with IsSettlement set, paid by the
//     debtor with the creditor as the only participant.
//
// # Design Principles
//
//  1. **Identity by ID**: users are referenced by UUID everywhere; names are
//     presentational only.
//  2. **Loose references**: an expense may reference users that have since
//     been removed from the group. This is deliberate: the balance engine
//     tolerates dangling IDs instead of requiring cascading rewrites of
//     history (see internal/calculator).
//  3. **Avoid circular references**: relationships use ID strings, never
//     pointers between models.
package models
