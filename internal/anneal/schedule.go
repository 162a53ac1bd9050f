// Package anneal maps iteration indices within a design stage to concrete
// optimization settings (temperature, softness, hardness, dropout, gumbel
// noise, learning-rate scale) and composes stages into named multi-stage
// protocols.
package anneal

import "fmt"

// #region stage

// Stage describes one annealing stage. Temp decays quadratically from Temp
// to ETemp, Soft ramps linearly from Soft to ESoft, and Hard, Dropout and
// Gumbel are held constant for the whole stage. A RampTemplate stage instead
// holds every annealing field fixed and ramps TemplateDropout linearly from
// 0 to 1.
type Stage struct {
	Name  string
	Iters int

	Temp  float64
	ETemp float64
	Soft  float64
	ESoft float64

	Hard    bool
	Dropout bool
	Gumbel  bool

	// SaveBest enables best-checkpoint tracking for this stage. By
	// convention only the final hard stage of a composed protocol sets it.
	SaveBest bool

	RampTemplate bool
}

// Point is the evaluated schedule at one iteration.
type Point struct {
	Temp    float64
	Soft    float64
	LRScale float64

	Hard    bool
	Dropout bool
	Gumbel  bool

	TemplateDropout    float64
	HasTemplateDropout bool
}

// Validate rejects stages the schedule formulas cannot evaluate.
func (st Stage) Validate() error {
	if st.Iters < 1 {
		return fmt.Errorf("stage %q: iters must be >= 1, got %d", st.Name, st.Iters)
	}
	if st.Temp <= 0 || st.ETemp <= 0 {
		return fmt.Errorf("stage %q: temperatures must be > 0, got temp=%v e_temp=%v", st.Name, st.Temp, st.ETemp)
	}
	if st.Soft < 0 || st.Soft > 1 || st.ESoft < 0 || st.ESoft > 1 {
		return fmt.Errorf("stage %q: soft must be within [0,1], got soft=%v e_soft=%v", st.Name, st.Soft, st.ESoft)
	}
	return nil
}

// At evaluates the schedule at iteration i in [0, Iters).
//
// A single-iteration stage evaluates at its end-of-schedule values rather
// than dividing by zero: the one step a caller asked for is the stage's
// target setting.
func (st Stage) At(i int) (Point, error) {
	if err := st.Validate(); err != nil {
		return Point{}, err
	}
	if i < 0 || i >= st.Iters {
		return Point{}, fmt.Errorf("stage %q: iteration %d outside [0,%d)", st.Name, i, st.Iters)
	}

	frac := 1.0
	if st.Iters > 1 {
		frac = float64(i) / float64(st.Iters-1)
	}

	p := Point{Hard: st.Hard, Dropout: st.Dropout, Gumbel: st.Gumbel}
	if st.RampTemplate {
		p.Temp = st.Temp
		p.Soft = st.Soft
		p.LRScale = 1.0
		p.TemplateDropout = frac
		p.HasTemplateDropout = true
		return p, nil
	}

	r := 1.0 - frac
	p.Temp = st.ETemp + (st.Temp-st.ETemp)*r*r
	p.Soft = st.Soft + (st.ESoft-st.Soft)*frac
	p.LRScale = (1.0 - p.Soft) + p.Soft*p.Temp
	return p, nil
}

// Points evaluates the whole stage.
func (st Stage) Points() ([]Point, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	out := make([]Point, st.Iters)
	for i := 0; i < st.Iters; i++ {
		p, err := st.At(i)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// #endregion stage

// #region protocols

// LogitsStage optimizes raw logits, ramping soft from 0 to eSoft with no
// hard decoding. eSoft of 0 keeps the stage fully unsoftened.
func LogitsStage(iters int, eSoft float64) Stage {
	return Stage{Name: "logits", Iters: iters, Temp: 1, ETemp: 1, Soft: 0, ESoft: eSoft, Dropout: true}
}

// SoftStage optimizes the softened distribution: soft held at 1, the
// temperature annealing from temp to eTemp.
func SoftStage(iters int, temp, eTemp float64) Stage {
	return Stage{Name: "soft", Iters: iters, Temp: temp, ETemp: eTemp, Soft: 1, ESoft: 1, Dropout: true}
}

// HardStage optimizes through the discretized sequence, soft held at 1.
func HardStage(iters int) Stage {
	return Stage{Name: "hard", Iters: iters, Temp: 1, ETemp: 1, Soft: 1, ESoft: 1, Hard: true, Dropout: true}
}

// finalHardStage is the closing stage shared by the composed protocols:
// minimum temperature, dropout off, best-checkpoint tracking on.
func finalHardStage(iters int) Stage {
	return Stage{Name: "hard", Iters: iters, Temp: 1e-2, ETemp: 1e-2, Soft: 1, ESoft: 1,
		Hard: true, SaveBest: true}
}

// TwoStage composes soft -> temperature-anneal -> hard.
func TwoStage(softIters, tempIters, hardIters int, temp float64, dropout, gumbel bool) []Stage {
	s1 := SoftStage(softIters, temp, temp)
	s1.Dropout, s1.Gumbel = dropout, gumbel
	s2 := SoftStage(tempIters, temp, 1e-2)
	s2.Name = "anneal"
	s2.Dropout = dropout
	return []Stage{s1, s2, finalHardStage(hardIters)}
}

// ThreeStage composes logits (soft ramping 0 to 1) -> temperature-anneal ->
// hard.
func ThreeStage(softIters, tempIters, hardIters int, temp float64, dropout, gumbel bool) []Stage {
	s1 := LogitsStage(softIters, 1)
	s1.Temp, s1.ETemp = temp, temp
	s1.Dropout, s1.Gumbel = dropout, gumbel
	s2 := SoftStage(tempIters, temp, 1e-2)
	s2.Name = "anneal"
	s2.Dropout = dropout
	return []Stage{s1, s2, finalHardStage(hardIters)}
}

// TemplateRamp holds the annealing fields fixed while template dropout ramps
// from 0 to 1, progressively removing the template signal the oracle
// consumes during predesign.
func TemplateRamp(iters int, soft float64, hard, dropout bool, temp float64) Stage {
	return Stage{Name: "predesign", Iters: iters, Temp: temp, ETemp: temp, Soft: soft, ESoft: soft,
		Hard: hard, Dropout: dropout, RampTemplate: true}
}

// #endregion protocols
