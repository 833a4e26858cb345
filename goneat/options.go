package goneat

import (
	"github.com/yaricom/goNEAT/v4/neat"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"

	"github.com/kpacha/neatbird"
)

// DefaultOptions returns NEAT options tuned for the bird population, sized
// after the optimizer section of cfg.
func DefaultOptions(cfg neatbird.OptimizerConfig) *neat.Options {
	return &neat.Options{
		// Trait mutation
		TraitParamMutProb:  0.5,
		TraitMutationPower: 1.0,

		// Weight mutation
		WeightMutPower: 2.5,

		// Structural mutation rates
		MutateAddNodeProb:      0.03,
		MutateAddLinkProb:      0.08,
		MutateToggleEnableProb: 0.01,
		MutateGeneReenableProb: 0.01,

		// Weight mutation probability
		MutateLinkWeightsProb: 0.9,
		MutateOnlyProb:        0.25,
		MutateRandomTraitProb: 0.1,
		MutateLinkTraitProb:   0.1,
		MutateNodeTraitProb:   0.1,

		// Mating probabilities
		MateMultipointProb:    0.6,
		MateMultipointAvgProb: 0.4,
		MateSinglepointProb:   0.0,
		MateOnlyProb:          0.2,
		RecurOnlyProb:         0.0,
		InterspeciesMateRate:  0.001,

		// Speciation
		CompatThreshold: 3.0,
		DisjointCoeff:   1.0,
		ExcessCoeff:     1.0,
		MutdiffCoeff:    0.4,

		// Species management
		DropOffAge:      15,
		SurvivalThresh:  0.2,
		AgeSignificance: 1.0,
		NewLinkTries:    20,
		BabiesStolen:    0,

		PopSize:        cfg.PopulationSize,
		NumGenerations: cfg.Generations,
		NumRuns:        1,

		NodeActivators:     []neatmath.NodeActivationType{neatmath.SigmoidSteepenedActivation},
		NodeActivatorsProb: []float64{1.0},

		EpochExecutorType: neat.EpochExecutorTypeSequential,
		GenCompatMethod:   neat.GenomeCompatibilityMethodFast,
	}
}

// LoadOptions reads NEAT options from path, or returns DefaultOptions when
// path is empty. The population size and generation count of cfg always win.
func LoadOptions(path string, cfg neatbird.OptimizerConfig) (*neat.Options, error) {
	if path == "" {
		return DefaultOptions(cfg), nil
	}
	opts, err := neat.ReadNeatOptionsFromFile(path)
	if err != nil {
		return nil, err
	}
	if cfg.PopulationSize > 0 {
		opts.PopSize = cfg.PopulationSize
	}
	if cfg.Generations > 0 {
		opts.NumGenerations = cfg.Generations
	}
	if opts.NumRuns < 1 {
		opts.NumRuns = 1
	}
	return opts, nil
}
