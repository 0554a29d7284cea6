package statistics

// Statistics is a type-tagged aggregate. The concrete type is one of
// *F64, *I64, *U64, *Bool or *String.
type Statistics interface {
	// TypeName returns a short name of the value type.
	TypeName() string
	// TotalCount returns the number of rows seen, null or not.
	TotalCount() uint64
	// Nulls returns the number of null rows seen.
	Nulls() uint64
	// UpdateForNulls records n null rows.
	UpdateForNulls(n uint64)

	isStatistics()
}

// F64 holds statistics of a float64 column.
type F64 struct{ StatValues[float64] }

// I64 holds statistics of an int64 or timestamp column.
type I64 struct{ StatValues[int64] }

// U64 holds statistics of a uint64 column.
type U64 struct{ StatValues[uint64] }

// Bool holds statistics of a boolean column.
type Bool struct{ StatValues[bool] }

// String holds statistics of a string or tag column.
type String struct{ StatValues[string] }

func (*F64) TypeName() string    { return "f64" }
func (*I64) TypeName() string    { return "i64" }
func (*U64) TypeName() string    { return "u64" }
func (*Bool) TypeName() string   { return "bool" }
func (*String) TypeName() string { return "string" }

func (s *F64) Nulls() uint64    { return s.NullCount }
func (s *I64) Nulls() uint64    { return s.NullCount }
func (s *U64) Nulls() uint64    { return s.NullCount }
func (s *Bool) Nulls() uint64   { return s.NullCount }
func (s *String) Nulls() uint64 { return s.NullCount }

func (*F64) isStatistics()    {}
func (*I64) isStatistics()    {}
func (*U64) isStatistics()    {}
func (*Bool) isStatistics()   {}
func (*String) isStatistics() {}
