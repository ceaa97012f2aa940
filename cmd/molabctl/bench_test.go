package main

import "testing"

func TestRunBenchRejectsEmptyPopulation(t *testing.T) {
	if err := runBench(benchConfig{States: 0, Updates: 100}); err == nil {
		t.Error("expected an error for zero states")
	}
	if err := runBench(benchConfig{States: -1, Updates: 100}); err == nil {
		t.Error("expected an error for negative states")
	}
}

func TestRunBenchSmallPopulation(t *testing.T) {
	if err := runBench(benchConfig{States: 2, Updates: 4, Churn: 1}); err != nil {
		t.Fatalf("bench failed: %v", err)
	}
}
