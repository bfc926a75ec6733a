package shared

// Macros holds macro targets or totals in grams.
type Macros struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

// Add returns the element-wise sum of two macro sets.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		ProteinG: m.ProteinG + o.ProteinG,
		CarbsG:   m.CarbsG + o.CarbsG,
		FatG:     m.FatG + o.FatG,
	}
}

// IsZero reports whether all grams are zero.
func (m Macros) IsZero() bool {
	return m.ProteinG == 0 && m.CarbsG == 0 && m.FatG == 0
}
