package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DrawSourceRandom     = "random"
	DrawSourceControlled = "controlled"
	DrawSourceCorrected  = "corrected"
)

// DrawResult holds the ranked outcome of one period. Positions is always a
// permutation of 1..10.
type DrawResult struct {
	gorm.Model

	PeriodNo  string                   `gorm:"uniqueIndex;size:32" json:"period_no"`
	Positions datatypes.JSONSlice[int] `json:"positions"`
	Source    string                   `gorm:"size:16" json:"source"`
}

// DrawResultAudit records an administrative correction of a draw result.
// Corrections are only accepted before the period begins settling.
type DrawResultAudit struct {
	gorm.Model

	PeriodNo     string                   `gorm:"index;size:32" json:"period_no"`
	OldPositions datatypes.JSONSlice[int] `json:"old_positions"`
	NewPositions datatypes.JSONSlice[int] `json:"new_positions"`
	Operator     string                   `gorm:"size:64" json:"operator"`
	Reason       string                   `gorm:"size:255" json:"reason"`
}

// ValidPermutation reports whether positions is a permutation of 1..10.
func ValidPermutation(positions []int) bool {
	if len(positions) != 10 {
		return false
	}
	var seen [11]bool
	for _, n := range positions {
		if n < 1 || n > 10 || seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}
