// Package macro implements the MacroTable external collaborator of
// spec.md §6.4: a fixed table of opaque byte-emitting actions, each carrying
// the mutable utility and usage bookkeeping the action selector reads and
// writes every tick. StaticTable is the concrete, in-process implementation;
// a real deployment could swap in one backed by an external macro library
// without the action selector or engine changing at all.
package macro
