package config_test

import (
	"testing"

	"bverify/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioFileVerifyMode(t *testing.T) {
	scenarios, err := config.ParseScenarioFile("testdata/scenarios.bv")
	require.NoError(t, err)
	require.Len(t, scenarios, 4)

	s1 := scenarios[0]
	require.Equal(t, "S1", s1.Name)
	require.Equal(t, config.ModeVerify, s1.Config.Mode)
	require.Equal(t, 5, s1.Config.UnrollDepth)
	require.True(t, s1.Expect)
	require.Contains(t, s1.Program, "assert z==50")

	s2 := scenarios[1]
	require.False(t, s2.Expect)
}

func TestParseScenarioFileEquivMode(t *testing.T) {
	scenarios, err := config.ParseScenarioFile("testdata/scenarios_equiv.bv")
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	s4 := scenarios[0]
	require.Equal(t, config.ModeEquiv, s4.Config.Mode)
	require.NotEmpty(t, s4.Program)
	require.NotEmpty(t, s4.Program2)
	require.True(t, s4.Expect)
}

func TestParseScenariosRejectsUnknownMode(t *testing.T) {
	_, err := config.ParseScenarios("inline", `scenario X bogus { program = "x" }`)
	require.Error(t, err)
}

func TestNewAppliesOptionsOverDefaults(t *testing.T) {
	cfg := config.New(
		config.WithUnrollDepth(4),
		config.WithOptimizations(config.ConstantPropagation, config.DeadCodeElimination),
		config.WithMode(config.ModeEquiv),
		config.WithSolverPath("/usr/local/bin/z3"),
	)
	require.Equal(t, 4, cfg.UnrollDepth)
	require.Equal(t, config.ModeEquiv, cfg.Mode)
	require.Equal(t, "/usr/local/bin/z3", cfg.SolverPath)
	require.Len(t, cfg.Optimizations, 2)
}
