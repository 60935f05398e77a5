// Package dataset loads land-use observations and partitions them into
// (age group, diet group, sex) groups.
package dataset

import (
	"fmt"
	"strings"

	"github.com/banshee-data/landuse.report/internal/reporterr"
)

// Sex is the recorded sex of a participant.
type Sex string

const (
	Female Sex = "female"
	Male   Sex = "male"
)

// DietGroup is one of the six fixed diet categories.
type DietGroup string

const (
	Fish    DietGroup = "fish"
	Meat50  DietGroup = "meat50"  // moderate meat
	Meat100 DietGroup = "meat100" // high meat
	Meat    DietGroup = "meat"    // amount unspecified
	Vegan   DietGroup = "vegan"
	Veggie  DietGroup = "veggie"
)

// AgeGroup is a decade bin.
type AgeGroup string

const (
	Age20s AgeGroup = "20-29"
	Age30s AgeGroup = "30-39"
	Age40s AgeGroup = "40-49"
	Age50s AgeGroup = "50-59"
	Age60s AgeGroup = "60-69"
	Age70s AgeGroup = "70-79"
)

// AllSexes, AllDiets and AllAges enumerate the valid labels in their
// natural order.
var (
	AllSexes = []Sex{Female, Male}
	AllDiets = []DietGroup{Fish, Meat50, Meat100, Meat, Vegan, Veggie}
	AllAges  = []AgeGroup{Age20s, Age30s, Age40s, Age50s, Age60s, Age70s}
)

// ParseSex validates a sex label. Surrounding whitespace is ignored.
func ParseSex(s string) (Sex, error) {
	v := Sex(strings.TrimSpace(s))
	for _, x := range AllSexes {
		if v == x {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: sex %q", reporterr.ErrUnknownCategory, s)
}

// ParseDiet validates a diet-group label.
func ParseDiet(s string) (DietGroup, error) {
	v := DietGroup(strings.TrimSpace(s))
	for _, x := range AllDiets {
		if v == x {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: diet_group %q", reporterr.ErrUnknownCategory, s)
}

// ParseAge validates an age-group label.
func ParseAge(s string) (AgeGroup, error) {
	v := AgeGroup(strings.TrimSpace(s))
	for _, x := range AllAges {
		if v == x {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: age_group %q", reporterr.ErrUnknownCategory, s)
}

// Ordering fixes the display order of every category. Sexes order the
// column blocks left to right, Diets order the columns inside a block and
// Ages order the rows top to bottom.
type Ordering struct {
	Sexes []Sex
	Diets []DietGroup
	Ages  []AgeGroup
}

// DefaultOrdering returns the report ordering: female block first, diets
// in survey order, and age groups oldest first so the youngest row sits at
// the bottom of the figure.
func DefaultOrdering() Ordering {
	ages := make([]AgeGroup, len(AllAges))
	for i, a := range AllAges {
		ages[len(AllAges)-1-i] = a
	}
	return Ordering{
		Sexes: append([]Sex(nil), AllSexes...),
		Diets: append([]DietGroup(nil), AllDiets...),
		Ages:  ages,
	}
}

// Validate checks that each list is a permutation of its enumeration.
func (o Ordering) Validate() error {
	if err := permutation("sex", o.Sexes, AllSexes); err != nil {
		return err
	}
	if err := permutation("diet", o.Diets, AllDiets); err != nil {
		return err
	}
	return permutation("age", o.Ages, AllAges)
}

func permutation[T comparable](name string, got, want []T) error {
	if len(got) != len(want) {
		return fmt.Errorf("%s ordering has %d entries, want %d", name, len(got), len(want))
	}
	valid := make(map[T]bool, len(want))
	for _, w := range want {
		valid[w] = true
	}
	seen := make(map[T]bool, len(got))
	for _, g := range got {
		if !valid[g] {
			return fmt.Errorf("%s ordering: %w %v", name, reporterr.ErrUnknownCategory, g)
		}
		if seen[g] {
			return fmt.Errorf("%s ordering: duplicate entry %v", name, g)
		}
		seen[g] = true
	}
	return nil
}

// SexIndex returns the block position of s.
func (o Ordering) SexIndex(s Sex) (int, bool) { return indexOf(o.Sexes, s) }

// DietIndex returns the column position of d within a block.
func (o Ordering) DietIndex(d DietGroup) (int, bool) { return indexOf(o.Diets, d) }

// AgeIndex returns the row position of a, counted from the top.
func (o Ordering) AgeIndex(a AgeGroup) (int, bool) { return indexOf(o.Ages, a) }

func indexOf[T comparable](xs []T, v T) (int, bool) {
	for i, x := range xs {
		if x == v {
			return i, true
		}
	}
	return -1, false
}
