// Package columns resolves the column set of the users table and the value
// shown in each cell.
//
// The package has two halves that share only data:
//
//   - [Resolve] merges the built-in default fields with operator supplied
//     [Customization] rules into the final ordered list of visible [Field]s.
//   - [CellResolver] computes the display value of one (field, row) pair,
//     applying the fallback chain and isolating formatter failures.
//
// # Customizations
//
// Each customization is a tagged variant:
//
//   - [KindPassive]: no opinion about the list; only consulted for the
//     connection column.
//   - [KindAppend]: include the property as a new column placed after the
//     defaults (order [SentinelOrder]).
//   - [KindOverride]: merge an [Override] over the customization and replace
//     any default with the same key.
//   - [KindSuppress]: remove the key from the final list. Suppression is
//     applied last and always wins.
//
// # Epochs
//
// The result of [Resolve] is immutable. [Epochs] holds the current resolved
// list and swaps in a new [Epoch] atomically when the customizations change,
// so a render pass never sees a mix of old and new columns.
package columns
