// Copyright 2025 Docuverse
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/docuverse/attest/core"
)

// cacheEntry is the on-disk shape of a cached chunk set: the store
// time drives lazy expiry, the chunks are the artifact itself.
type cacheEntry struct {
	StoredAt int64
	Chunks   []*core.Chunk
}

// Hand-written MUS serializers. The cached shapes are two small fixed
// structs, so the format library is used directly without codegen.
var (
	sectionMUS = ord.NewMapSer[string, string](ord.String, ord.String)
	chunkMUS   = chunkSer{}
	chunksMUS  = ord.NewSliceSer[core.Chunk](chunkMUS)
)

// chunkSer serializes core.Chunk field by field in declaration order.
type chunkSer struct{}

var _ mus.Serializer[core.Chunk] = chunkSer{}

func (chunkSer) Marshal(c core.Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.Content, bs)
	n += ord.String.Marshal(c.Source, bs[n:])
	n += varint.Int.Marshal(c.Page, bs[n:])
	n += sectionMUS.Marshal(c.Section, bs[n:])
	return
}

func (chunkSer) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var n1 int
	c.Content, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Page, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Section, n1, err = sectionMUS.Unmarshal(bs[n:])
	n += n1
	// The map serializer decodes an empty map where nil was encoded;
	// normalize so a round-tripped chunk compares equal to the input.
	if len(c.Section) == 0 {
		c.Section = nil
	}
	return
}

func (chunkSer) Size(c core.Chunk) (size int) {
	size = ord.String.Size(c.Content)
	size += ord.String.Size(c.Source)
	size += varint.Int.Size(c.Page)
	size += sectionMUS.Size(c.Section)
	return
}

func (chunkSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = sectionMUS.Skip(bs[n:])
	n += n1
	return
}

// marshalEntry serializes a cacheEntry to bytes.
func marshalEntry(entry *cacheEntry) ([]byte, error) {
	chunks := make([]core.Chunk, len(entry.Chunks))
	for i, c := range entry.Chunks {
		chunks[i] = *c
	}

	size := varint.Int64.Size(entry.StoredAt) + chunksMUS.Size(chunks)
	buf := make([]byte, size)
	n := varint.Int64.Marshal(entry.StoredAt, buf)
	chunksMUS.Marshal(chunks, buf[n:])
	return buf, nil
}

// unmarshalEntry deserializes a cacheEntry from bytes.
func unmarshalEntry(data []byte) (*cacheEntry, error) {
	storedAt, n, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	chunks, _, err := chunksMUS.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}

	entry := &cacheEntry{
		StoredAt: storedAt,
		Chunks:   make([]*core.Chunk, len(chunks)),
	}
	for i := range chunks {
		entry.Chunks[i] = &chunks[i]
	}
	return entry, nil
}
