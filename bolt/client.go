package bolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/boltdb/bolt"
)

const (
	PhenomeBucket    = "PhenomeBucket"
	GenerationBucket = "GenerationBucket"
)

var (
	buckets          = []string{PhenomeBucket, GenerationBucket}
	ErrUnknownBucket = errors.New("unknown bucket")
	ErrNotFound      = errors.New("key not found")
)

// New opens (or creates) the database at path with all the buckets in place.
func New(path string) (*Client, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	for _, bucket := range buckets {
		err := db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(bucket))
			if err != nil {
				return fmt.Errorf("create bucket: %s", err.Error())
			}
			return nil
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Client{db}, nil
}

type Client struct {
	db *bolt.DB
}

func (c *Client) Close() error {
	return c.db.Close()
}

// Update stores v, gob encoded, under key.
func (c *Client) Update(bucket string, key []byte, v interface{}) error {
	if err := c.checkBucket(bucket); err != nil {
		return err
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		buf := new(bytes.Buffer)
		if err := gob.NewEncoder(buf).Encode(v); err != nil {
			return err
		}
		return b.Put(key, buf.Bytes())
	})
}

// Get decodes the value stored under key into v.
func (c *Client) Get(bucket string, key []byte, v interface{}) error {
	if err := c.checkBucket(bucket); err != nil {
		return err
	}

	return c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		data := b.Get(key)
		if data == nil {
			return ErrNotFound
		}
		return gob.NewDecoder(bytes.NewBuffer(data)).Decode(v)
	})
}

// ForEach calls fn for every entry of the bucket, in key order.
func (c *Client) ForEach(bucket string, fn func(key, value []byte) error) error {
	if err := c.checkBucket(bucket); err != nil {
		return err
	}

	return c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).ForEach(fn)
	})
}

func (c *Client) checkBucket(name string) error {
	for _, b := range buckets {
		if b == name {
			return nil
		}
	}
	return ErrUnknownBucket
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func btoi(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
