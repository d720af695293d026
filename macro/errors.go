package macro

import "errors"

// ErrEmptyTable indicates a StaticTable was built with zero macros; the
// action selector has nothing to argmax over or explore.
var ErrEmptyTable = errors.New("macro: table has no entries")
