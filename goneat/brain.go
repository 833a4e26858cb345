// Package goneat evolves bird controllers with goNEAT.
package goneat

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"

	"github.com/yaricom/goNEAT/v4/neat"
	"github.com/yaricom/goNEAT/v4/neat/genetics"
	neatmath "github.com/yaricom/goNEAT/v4/neat/math"
	"github.com/yaricom/goNEAT/v4/neat/network"
)

const (
	// NumInputs is the size of the bird's sensor vector.
	NumInputs = 3
	// NumOutputs is the number of network outputs: jump or not.
	NumOutputs = 1
)

// ErrNoPhenotype is returned for organisms without a network.
var ErrNoPhenotype = errors.New("organism has no phenotype")

// Brain wraps a goNEAT network as a neatbird.Jumper.
type Brain struct {
	net   *network.Network
	depth int
	in    []float64
}

// NewBrain creates a jumper from an organism's network.
func NewBrain(net *network.Network) (*Brain, error) {
	if net == nil {
		return nil, ErrNoPhenotype
	}
	// Activate with depth-based steps for proper signal propagation
	depth, err := net.MaxActivationDepth()
	if err != nil || depth < 1 {
		depth = 5 // fallback for networks with loops
	}
	return &Brain{net: net, depth: depth, in: make([]float64, NumInputs+1)}, nil
}

// Jump loads the sensors, the bias first, and thresholds the output at 0.5.
func (b *Brain) Jump(inputs []float64) (bool, error) {
	if len(inputs) != NumInputs {
		return false, fmt.Errorf("expected %d inputs, got %d", NumInputs, len(inputs))
	}
	b.in[0] = 1.0
	copy(b.in[1:], inputs)

	if err := b.net.LoadSensors(b.in); err != nil {
		return false, fmt.Errorf("failed to load sensors: %w", err)
	}
	for i := 0; i < b.depth; i++ {
		if _, err := b.net.Activate(); err != nil {
			return false, fmt.Errorf("activation failed: %w", err)
		}
	}
	outputs := b.net.ReadOutputs()

	// Flush network state for the next tick
	if _, err := b.net.Flush(); err != nil {
		return false, fmt.Errorf("flush failed: %w", err)
	}
	if len(outputs) < NumOutputs {
		return false, fmt.Errorf("expected %d outputs, got %d", NumOutputs, len(outputs))
	}
	return outputs[0] > 0.5, nil
}

// StartGenome creates the genome every population starts from: a bias and
// the three sensors fully connected to the output, with random weights.
func StartGenome(id int, rng *rand.Rand) *genetics.Genome {
	trait := neat.NewTrait()
	trait.Id = 1
	traits := []*neat.Trait{trait}

	nodes := make([]*network.NNode, 0, NumInputs+1+NumOutputs)

	bias := network.NewNNode(1, network.BiasNeuron)
	bias.ActivationType = neatmath.LinearActivation
	nodes = append(nodes, bias)

	for i := 1; i <= NumInputs; i++ {
		node := network.NewNNode(1+i, network.InputNeuron)
		node.ActivationType = neatmath.LinearActivation
		nodes = append(nodes, node)
	}
	for i := 1; i <= NumOutputs; i++ {
		node := network.NewNNode(1+NumInputs+i, network.OutputNeuron)
		node.ActivationType = neatmath.SigmoidSteepenedActivation
		nodes = append(nodes, node)
	}

	genes := make([]*genetics.Gene, 0, (NumInputs+1)*NumOutputs)
	innov := int64(1)
	for i := 0; i <= NumInputs; i++ {
		for j := 0; j < NumOutputs; j++ {
			gene := genetics.NewGeneWithTrait(
				trait,
				rng.Float64()*2-1,
				nodes[i],
				nodes[NumInputs+1+j],
				false,
				innov,
				0,
			)
			genes = append(genes, gene)
			innov++
		}
	}

	return genetics.NewGenome(id, traits, nodes, genes)
}

// EncodeGenome renders the genome in goNEAT's plain text format.
func EncodeGenome(g *genetics.Genome) (string, error) {
	var buf bytes.Buffer
	w, err := genetics.NewGenomeWriter(&buf, genetics.PlainGenomeEncoding)
	if err != nil {
		return "", err
	}
	if err := w.WriteGenome(g); err != nil {
		return "", fmt.Errorf("encoding genome %d: %w", g.Id, err)
	}
	return buf.String(), nil
}
