// Package vim parses Normal-mode key sequences into commands.
//
// The grammar is:
//
//	[count]["x][operator][count](motion | operator | textobject)
//	[count]["x]action
//
// Examples:
//   - "5j": count=5, motion=j
//   - "d3w": operator=d, count=3, motion=w
//   - "2d3w": operator=d, count=6 (counts multiply)
//   - `"ayw`: register=a, operator=y, motion=w
//   - "dd": operator=d, linewise
//   - "fx": motion=f, char=x
//   - "ci(": operator=c, inner paren text object
//
// Keys outside the grammar (':', Space, control keys) come back as
// StatusPassthrough so the mode machine can handle them. An invalid
// sequence clears the pending state and is never an error.
//
// The package also holds the register store used by yank, delete and put.
package vim
