package dataset

import "fmt"

// Observation is one row of the results file.
type Observation struct {
	MeanLand float64
	Sex      Sex
	Diet     DietGroup
	Age      AgeGroup
}

// GroupKey identifies one (age group, diet group, sex) cell.
type GroupKey struct {
	Age  AgeGroup
	Diet DietGroup
	Sex  Sex
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Sex, k.Diet, k.Age)
}

// Key returns the group the observation belongs to.
func (o Observation) Key() GroupKey {
	return GroupKey{Age: o.Age, Diet: o.Diet, Sex: o.Sex}
}

// Groups enumerates every group in display order: sex block, then diet
// column, then age row. The result always has len(Sexes)*len(Diets)*len(Ages)
// entries, whether or not the data covers them.
func (o Ordering) Groups() []GroupKey {
	keys := make([]GroupKey, 0, len(o.Sexes)*len(o.Diets)*len(o.Ages))
	for _, s := range o.Sexes {
		for _, d := range o.Diets {
			for _, a := range o.Ages {
				keys = append(keys, GroupKey{Age: a, Diet: d, Sex: s})
			}
		}
	}
	return keys
}

// Partition splits the measurements by group. Values keep their input order.
func Partition(obs []Observation) map[GroupKey][]float64 {
	out := make(map[GroupKey][]float64)
	for _, o := range obs {
		k := o.Key()
		out[k] = append(out[k], o.MeanLand)
	}
	return out
}

// Measurements returns the measurement column.
func Measurements(obs []Observation) []float64 {
	xs := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = o.MeanLand
	}
	return xs
}
