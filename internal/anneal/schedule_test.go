package anneal

import (
	"math"
	"testing"
)

func TestStage_EndpointValues(t *testing.T) {
	st := Stage{Name: "s", Iters: 10, Temp: 1.0, ETemp: 0.01, Soft: 0.2, ESoft: 0.9, Dropout: true}

	first, err := st.At(0)
	if err != nil {
		t.Fatalf("at 0: %v", err)
	}
	last, err := st.At(st.Iters - 1)
	if err != nil {
		t.Fatalf("at last: %v", err)
	}

	if math.Abs(first.Temp-st.Temp) > 1e-12 {
		t.Fatalf("temp(0): got=%v want=%v", first.Temp, st.Temp)
	}
	if math.Abs(last.Temp-st.ETemp) > 1e-12 {
		t.Fatalf("temp(end): got=%v want=%v", last.Temp, st.ETemp)
	}
	if math.Abs(first.Soft-st.Soft) > 1e-12 {
		t.Fatalf("soft(0): got=%v want=%v", first.Soft, st.Soft)
	}
	if math.Abs(last.Soft-st.ESoft) > 1e-12 {
		t.Fatalf("soft(end): got=%v want=%v", last.Soft, st.ESoft)
	}
}

func TestStage_SoftMonotonic(t *testing.T) {
	st := Stage{Name: "s", Iters: 17, Temp: 1, ETemp: 1, Soft: 0, ESoft: 1}
	points, err := st.Points()
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Soft < points[i-1].Soft {
			t.Fatalf("soft not monotonic at %d: %v < %v", i, points[i].Soft, points[i-1].Soft)
		}
	}
}

func TestStage_TempDecayQuadratic(t *testing.T) {
	st := Stage{Name: "s", Iters: 5, Temp: 1.0, ETemp: 0.0001, Soft: 1, ESoft: 1}
	points, err := st.Points()
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	// midpoint of a quadratic decay sits below the linear midpoint
	linearMid := (st.Temp + st.ETemp) / 2
	if points[2].Temp >= linearMid {
		t.Fatalf("quadratic decay expected below linear midpoint: got=%v linear=%v", points[2].Temp, linearMid)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Temp > points[i-1].Temp {
			t.Fatalf("temp not decaying at %d", i)
		}
	}
}

func TestStage_LRScaleFormula(t *testing.T) {
	st := Stage{Name: "s", Iters: 4, Temp: 0.5, ETemp: 0.5, Soft: 0, ESoft: 1}
	points, err := st.Points()
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	for i, p := range points {
		want := (1 - p.Soft) + p.Soft*p.Temp
		if math.Abs(p.LRScale-want) > 1e-12 {
			t.Fatalf("lr_scale at %d: got=%v want=%v", i, p.LRScale, want)
		}
	}
}

func TestStage_SingleIterationUsesEndValues(t *testing.T) {
	st := Stage{Name: "s", Iters: 1, Temp: 1.0, ETemp: 0.01, Soft: 0, ESoft: 1}
	p, err := st.At(0)
	if err != nil {
		t.Fatalf("at 0: %v", err)
	}
	if p.Temp != st.ETemp || p.Soft != st.ESoft {
		t.Fatalf("single-iteration stage: got temp=%v soft=%v, want end values %v/%v",
			p.Temp, p.Soft, st.ETemp, st.ESoft)
	}
	if math.IsNaN(p.LRScale) {
		t.Fatal("single-iteration stage produced NaN lr_scale")
	}
}

func TestStage_Validation(t *testing.T) {
	cases := []struct {
		name string
		st   Stage
	}{
		{"zero iters", Stage{Name: "s", Iters: 0, Temp: 1, ETemp: 1}},
		{"zero temp", Stage{Name: "s", Iters: 2, Temp: 0, ETemp: 1}},
		{"negative e_temp", Stage{Name: "s", Iters: 2, Temp: 1, ETemp: -1}},
		{"soft above one", Stage{Name: "s", Iters: 2, Temp: 1, ETemp: 1, Soft: 1.5}},
	}
	for _, c := range cases {
		if err := c.st.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", c.name)
		}
	}
}

func TestStage_AtRejectsOutOfRange(t *testing.T) {
	st := Stage{Name: "s", Iters: 3, Temp: 1, ETemp: 1}
	if _, err := st.At(3); err == nil {
		t.Fatal("expected error for iteration beyond stage")
	}
	if _, err := st.At(-1); err == nil {
		t.Fatal("expected error for negative iteration")
	}
}

func TestLogitsStage_ScenarioRamp(t *testing.T) {
	// 4-step logits stage with constant temperature 1.0 and soft ramping to 1.
	st := LogitsStage(4, 1)
	points, err := st.Points()
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	wantSoft := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	for i, p := range points {
		if math.Abs(p.Soft-wantSoft[i]) > 1e-12 {
			t.Fatalf("soft[%d]: got=%v want=%v", i, p.Soft, wantSoft[i])
		}
		if p.Temp != 1.0 {
			t.Fatalf("temp[%d]: got=%v want=1.0", i, p.Temp)
		}
		if p.Hard {
			t.Fatalf("logits stage must not decode hard")
		}
	}
}

func TestTwoStage_Composition(t *testing.T) {
	stages := TwoStage(100, 100, 50, 1.0, true, false)
	if len(stages) != 3 {
		t.Fatalf("two-stage: got %d stages, want 3", len(stages))
	}
	if stages[0].Soft != 1 || stages[0].ESoft != 1 {
		t.Fatal("first stage must hold soft at 1")
	}
	if stages[1].ETemp != 1e-2 {
		t.Fatalf("second stage must anneal to 1e-2, got %v", stages[1].ETemp)
	}
	if !stages[2].Hard || stages[2].Dropout || !stages[2].SaveBest {
		t.Fatalf("final stage flags wrong: %+v", stages[2])
	}
	if stages[0].SaveBest || stages[1].SaveBest {
		t.Fatal("only the final stage tracks the best checkpoint")
	}
}

func TestThreeStage_FirstStageRampsSoft(t *testing.T) {
	stages := ThreeStage(300, 100, 50, 1.0, true, false)
	if stages[0].Soft != 0 || stages[0].ESoft != 1 {
		t.Fatalf("three-stage opening must ramp soft 0->1: %+v", stages[0])
	}
	if stages[0].Hard {
		t.Fatal("three-stage opening must not decode hard")
	}
	if !stages[2].SaveBest {
		t.Fatal("final stage must track best checkpoint")
	}
}

func TestTemplateRamp_DropoutRampsToOne(t *testing.T) {
	st := TemplateRamp(5, 1, false, true, 1.0)
	points, err := st.Points()
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if !points[0].HasTemplateDropout || points[0].TemplateDropout != 0 {
		t.Fatalf("template dropout must start at 0: %+v", points[0])
	}
	if points[4].TemplateDropout != 1 {
		t.Fatalf("template dropout must end at 1: %+v", points[4])
	}
	for i, p := range points {
		if p.Temp != 1.0 || p.Soft != 1.0 {
			t.Fatalf("annealing fields must stay fixed during predesign, point %d: %+v", i, p)
		}
		if p.LRScale != 1.0 {
			t.Fatalf("predesign keeps lr scale at 1, point %d: %v", i, p.LRScale)
		}
	}
}
