package bolt

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Champion is the best genome of a generation.
type Champion struct {
	Optimizer  string
	Generation int
	GenomeID   int64
	Fitness    float64
	Score      int
	Ticks      int
	Genome     string
}

// StoreChampion saves the champion keyed by its generation, replacing any
// previous entry for the same generation.
func (c *Client) StoreChampion(ch Champion) error {
	if ch.Generation < 0 {
		return fmt.Errorf("negative generation %d", ch.Generation)
	}
	return c.Update(GenerationBucket, itob(uint64(ch.Generation)), ch)
}

// Champion returns the champion of the given generation.
func (c *Client) Champion(generation int) (Champion, error) {
	var ch Champion
	err := c.Get(GenerationBucket, itob(uint64(generation)), &ch)
	return ch, err
}

// Champions returns every stored champion, oldest generation first.
func (c *Client) Champions() ([]Champion, error) {
	var res []Champion
	err := c.ForEach(GenerationBucket, func(k, v []byte) error {
		var ch Champion
		if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&ch); err != nil {
			return fmt.Errorf("decoding generation %d: %w", btoi(k), err)
		}
		res = append(res, ch)
		return nil
	})
	return res, err
}
