package design

import (
	"context"
	"fmt"
	"log"

	"github.com/vxh357/ColabDesign/internal/anneal"
)

// #region stages

// Design runs one annealing stage, one gradient step per schedule point.
// The stage's constant fields and per-iteration temperature/softness merge
// into the session options, so later stages see what earlier ones left.
func (s *Session) Design(ctx context.Context, st anneal.Stage) error {
	pts, err := st.Points()
	if err != nil {
		return fmt.Errorf("design: %w", err)
	}
	log.Printf("[DESIGN] stage %s: iters=%d", st.Name, st.Iters)

	for _, p := range pts {
		if err := ctx.Err(); err != nil {
			return err
		}
		sc := StepConfig{
			Overrides: pointOverrides(p),
			LRScale:   p.LRScale,
			SaveBest:  st.SaveBest,
			Verbose:   true,
		}
		if err := s.Step(ctx, sc); err != nil {
			return err
		}
	}
	return nil
}

// DesignStages runs the given stages in order.
func (s *Session) DesignStages(ctx context.Context, stages ...anneal.Stage) error {
	for _, st := range stages {
		if err := s.Design(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func pointOverrides(p anneal.Point) Overrides {
	hard := 0.0
	if p.Hard {
		hard = 1.0
	}
	ov := Overrides{
		Temp:    f64p(p.Temp),
		Soft:    f64p(p.Soft),
		Hard:    f64p(hard),
		Dropout: boolp(p.Dropout),
		Gumbel:  boolp(p.Gumbel),
	}
	if p.HasTemplateDropout {
		ov.TemplateDropout = f64p(p.TemplateDropout)
	}
	return ov
}

// #endregion stages

// #region protocols

// DesignLogits optimizes the raw logits.
func (s *Session) DesignLogits(ctx context.Context, iters int) error {
	return s.Design(ctx, anneal.LogitsStage(iters, 0))
}

// DesignSoft optimizes the softened distribution.
func (s *Session) DesignSoft(ctx context.Context, iters int) error {
	return s.Design(ctx, anneal.SoftStage(iters, 1, 1))
}

// DesignHard optimizes through the discretized sequence.
func (s *Session) DesignHard(ctx context.Context, iters int) error {
	return s.Design(ctx, anneal.HardStage(iters))
}

// Design2Stage runs soft, temperature-anneal, then hard stages.
// Non-positive iteration counts fall back to 100/100/50.
func (s *Session) Design2Stage(ctx context.Context, softIters, tempIters, hardIters int) error {
	stages := anneal.TwoStage(
		stageIters(softIters, 100),
		stageIters(tempIters, 100),
		stageIters(hardIters, 50),
		1.0, true, false)
	return s.DesignStages(ctx, stages...)
}

// Design3Stage runs logits (soft ramping to 1), temperature-anneal, then
// hard stages. Non-positive iteration counts fall back to 300/100/50.
func (s *Session) Design3Stage(ctx context.Context, softIters, tempIters, hardIters int) error {
	stages := anneal.ThreeStage(
		stageIters(softIters, 300),
		stageIters(tempIters, 100),
		stageIters(hardIters, 50),
		1.0, true, false)
	return s.DesignStages(ctx, stages...)
}

// TemplatePredesign holds the relaxation fixed while template dropout
// ramps from 0 to 1, weaning the oracle off its structural template.
func (s *Session) TemplatePredesign(ctx context.Context, iters int) error {
	return s.Design(ctx, anneal.TemplateRamp(stageIters(iters, 100), 1.0, false, true, 1.0))
}

func stageIters(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// #endregion protocols
