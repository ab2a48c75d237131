package reactor

import (
	"github.com/roach88/reactorcalc/internal/kinetics"
	"github.com/roach88/reactorcalc/internal/model"
	"github.com/roach88/reactorcalc/internal/units"
)

// Batch is a well-mixed batch reactor. Its residence is the batch time and
// its size is the reaction time needed to reach a target conversion.
type Batch struct{}

func (Batch) Type() model.Reactor { return model.Batch }

// Compute implements Model.
func (b Batch) Compute(mode model.Mode, p Params) (model.Result, error) {
	return compute(b, mode, p)
}

func (Batch) residence(g Geometry) (float64, error) {
	if err := nonNegative("geometry.time", g.Time); err != nil {
		return 0, err
	}
	return g.Time, nil
}

func (Batch) conversion(tau, k, n, cref float64) (float64, error) {
	return kinetics.ConversionAfter(tau, k, n, cref)
}

func (Batch) size(x, k, n, cref float64, _ Geometry) (units.Quantity, float64, float64, error) {
	t, err := kinetics.ResidenceFor(x, k, n, cref)
	if err != nil {
		return "", 0, 0, err
	}
	return units.Time, t, t, nil
}
