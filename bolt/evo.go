package bolt

import (
	"log/slog"

	"github.com/klokare/evo"

	"github.com/kpacha/neatbird"
)

// Evo stores the best genome of every evaluated evo population.
type Evo struct {
	Client  *Client
	Harness *neatbird.Harness
}

// StoreBest is an evo listener keeping the best genome by ID and a champion
// summary by generation.
func (e *Evo) StoreBest(pop evo.Population) error {
	if len(pop.Genomes) == 0 {
		return nil
	}
	best := neatbird.Best(pop)

	slog.Debug("storing best genome", "generation", pop.Generation, "id", best.ID)

	if err := e.Client.Update(PhenomeBucket, itob(uint64(best.ID)), best); err != nil {
		return err
	}

	ch := Champion{
		Optimizer:  "evo",
		Generation: pop.Generation,
		GenomeID:   int64(best.ID),
		Fitness:    best.Fitness,
		Genome:     best.Decoded.String(),
	}
	if e.Harness != nil {
		last := e.Harness.Last()
		ch.Score, ch.Ticks = last.Score, last.Ticks
	}
	return e.Client.StoreChampion(ch)
}
