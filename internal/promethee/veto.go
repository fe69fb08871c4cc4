package promethee

type VetoResult struct {
	Total   Matrix
	Partial PartialMatrix
}

// PartialVeto is 1 when b beats a on c by at least the veto threshold, else 0.
// Criteria without a veto threshold never veto.
func PartialVeto(c Criterion, ga, gb float64) (float64, error) {
	v, err := ResolveThreshold(c.Direction, ga, gb, c.Veto)
	if err != nil || v == nil {
		return 0, err
	}
	diff, err := Difference(c.Direction, ga, gb)
	if err != nil {
		return 0, err
	}
	if -diff >= *v {
		return 1, nil
	}
	return 0, nil
}

// Veto computes the total veto of every pair. Without weights any single
// partial veto is decisive; with weights the total is the weighted mean of
// the partial vetoes.
func (e *Engine) Veto(in *Inputs, weighted bool) (*VetoResult, error) {
	if err := in.validate(weighted); err != nil {
		return nil, err
	}
	pairs := Pairs(in)
	partial, err := e.evalPairs(in, pairs, PartialVeto)
	if err != nil {
		return nil, err
	}

	res := &VetoResult{Total: make(Matrix), Partial: partial}
	for _, pair := range pairs {
		pv := partial[pair.A][pair.B]
		var total float64
		if weighted {
			var sum, weights float64
			for _, c := range in.Criteria {
				sum += c.Weight * pv[c.ID]
				weights += c.Weight
			}
			total = sum / weights
		} else {
			for _, c := range in.Criteria {
				if pv[c.ID] == 1 {
					total = 1
					break
				}
			}
		}
		res.Total.Set(pair.A, pair.B, total)
	}
	return res, nil
}
