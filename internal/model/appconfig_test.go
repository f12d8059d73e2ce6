package model

import "testing"

func TestDefaultAppConfigMatchesDefaultConstraint(t *testing.T) {
	cfg := DefaultAppConfig()
	c := DefaultConstraint()

	if cfg.DefaultMinGap != c.MinGap {
		t.Errorf("MinGap mismatch: config=%f constraint=%f", cfg.DefaultMinGap, c.MinGap)
	}
	if cfg.DefaultAllowRotation != c.AllowRotation {
		t.Errorf("AllowRotation mismatch: config=%v constraint=%v", cfg.DefaultAllowRotation, c.AllowRotation)
	}
	if cfg.DefaultRotationStep != c.RotationStep {
		t.Errorf("RotationStep mismatch: config=%f constraint=%f", cfg.DefaultRotationStep, c.RotationStep)
	}
	if cfg.RandomSeed != 42 {
		t.Errorf("expected default seed 42, got %d", cfg.RandomSeed)
	}
	if cfg.RecentJobs == nil {
		t.Error("RecentJobs should not be nil")
	}
}

func TestApplyToConstraint(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultMinGap = 3.0
	cfg.DefaultAllowRotation = false

	c := DefaultConstraint()
	cfg.ApplyToConstraint(&c)

	if c.MinGap != 3.0 {
		t.Errorf("expected MinGap=3.0, got %f", c.MinGap)
	}
	if c.AllowRotation {
		t.Error("expected rotation disabled")
	}
}

func TestAddRecentJobMovesToFront(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentJob("a.yaml")
	cfg.AddRecentJob("b.yaml")
	cfg.AddRecentJob("a.yaml")

	if len(cfg.RecentJobs) != 2 {
		t.Fatalf("expected 2 recent jobs, got %d", len(cfg.RecentJobs))
	}
	if cfg.RecentJobs[0] != "a.yaml" {
		t.Errorf("expected a.yaml first, got %s", cfg.RecentJobs[0])
	}
	for i := 0; i < 20; i++ {
		cfg.AddRecentJob(string(rune('c'+i)) + ".yaml")
	}
	if len(cfg.RecentJobs) != 10 {
		t.Errorf("expected list capped at 10, got %d", len(cfg.RecentJobs))
	}
}
