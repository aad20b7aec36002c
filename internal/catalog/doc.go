// Package catalog defines the product model shared by the whole client,
// plus the two pure rules that every fetched product passes through:
//
//   - Enrich assigns deterministic color/size variant options by category
//     family (the remote source carries no variant data of its own).
//   - EffectivePrice maps a base price and a selected size token to the
//     price a cart line is frozen at.
//
// Both rules are total and idempotent. Products are value types; once
// enriched they are never mutated, only snapshotted into cart lines.
package catalog
