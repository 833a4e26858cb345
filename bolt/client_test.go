package bolt

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func newClient(t *testing.T) *Client {
	client, err := New(filepath.Join(t.TempDir(), "my.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClient(t *testing.T) {
	client, err := New(filepath.Join(t.TempDir(), "my.db"))
	if err != nil {
		t.Error(err)
		return
	}
	a := A{
		P1: "aaaaa",
		P2: 42,
		P3: true,
	}
	if err := client.Update(PhenomeBucket, []byte("key"), &a); err != nil {
		t.Error(err)
		return
	}
	b := new(A)
	if err := client.Get(PhenomeBucket, []byte("key"), b); err != nil {
		t.Error(err)
		return
	}
	if !reflect.DeepEqual(a, *b) {
		t.Errorf("a & b are not equal: %+v, %+v", a, *b)
	}
	if err := client.Close(); err != nil {
		t.Error(err)
	}
}

func TestClient_unknownBucket(t *testing.T) {
	client := newClient(t)
	if err := client.Update("nope", []byte("key"), 1); !errors.Is(err, ErrUnknownBucket) {
		t.Errorf("unexpected error: %v", err)
	}
	var v int
	if err := client.Get("nope", []byte("key"), &v); !errors.Is(err, ErrUnknownBucket) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_notFound(t *testing.T) {
	client := newClient(t)
	var v A
	if err := client.Get(PhenomeBucket, []byte("missing"), &v); !errors.Is(err, ErrNotFound) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChampions(t *testing.T) {
	client := newClient(t)
	champions := []Champion{
		{Optimizer: "goneat", Generation: 2, GenomeID: 7, Fitness: 12.5, Score: 1, Ticks: 120, Genome: "g7"},
		{Optimizer: "goneat", Generation: 0, GenomeID: 3, Fitness: 2.3, Ticks: 23, Genome: "g3"},
		{Optimizer: "goneat", Generation: 1, GenomeID: 5, Fitness: 4.1, Ticks: 41, Genome: "g5"},
	}
	for _, ch := range champions {
		if err := client.StoreChampion(ch); err != nil {
			t.Fatal(err)
		}
	}

	got, err := client.Champions()
	if err != nil {
		t.Fatal(err)
	}
	want := []Champion{champions[1], champions[2], champions[0]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected champions:\n got %+v\nwant %+v", got, want)
	}

	ch, err := client.Champion(2)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ch, champions[0]) {
		t.Errorf("unexpected champion: %+v", ch)
	}

	if err := client.StoreChampion(Champion{Generation: -1}); err == nil {
		t.Error("expecting an error for a negative generation")
	}
}

type A struct {
	P1 string
	P2 int
	P3 bool
}
