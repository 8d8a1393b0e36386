// Package cursor provides the selection model used by the visual modes.
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started
//   - Head: The current cursor position
//
// Charwise selections are inclusive of the grapheme under the end point;
// linewise selections always cover whole lines. Range converts either kind
// into the half-open buffer.Range that operators act on.
package cursor
