package macro

// TableOption configures a StaticTable at construction time, following the
// same functional-option shape used throughout this codebase.
type TableOption func(*staticConfig)

type staticConfig struct {
	payloads [][]byte
}

// WithPayload appends one macro, whose emitted bytes are a copy of b.
// A nil or empty payload is a no-op.
func WithPayload(b []byte) TableOption {
	return func(c *staticConfig) {
		if len(b) == 0 {
			return
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		c.payloads = append(c.payloads, cp)
	}
}

// WithPayloads appends one macro per entry of bs, in order.
func WithPayloads(bs ...[]byte) TableOption {
	return func(c *staticConfig) {
		for _, b := range bs {
			WithPayload(b)(c)
		}
	}
}

// StaticTable is a fixed, in-process MacroTable: every macro and its
// starting utility is known at construction time, and the table never grows
// or shrinks afterward.
type StaticTable struct {
	macros []Macro
}

// NewStaticTable builds a StaticTable from opts, applied in order, and
// returns ErrEmptyTable if no payload was ever added.
func NewStaticTable(opts ...TableOption) (*StaticTable, error) {
	cfg := &staticConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.payloads) == 0 {
		return nil, ErrEmptyTable
	}

	t := &StaticTable{macros: make([]Macro, len(cfg.payloads))}
	for i, p := range cfg.payloads {
		t.macros[i] = Macro{Bytes: p}
	}
	return t, nil
}

// Len implements Table.
func (t *StaticTable) Len() int { return len(t.macros) }

// At implements Table. Panics on an out-of-range i, unlike Arena's
// Vertex/Edge, which return an error because ids there come from untrusted
// external input; here i always comes from action.Select, which never
// produces an out-of-range index.
func (t *StaticTable) At(i int) *Macro { return &t.macros[i] }
