// Package action implements the selector of spec.md §4.8: epsilon-greedy
// choice over a macro.Table blended from fast/slow utility scores, and the
// post-tick reward update for whichever macro was chosen.
package action
