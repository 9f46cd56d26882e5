// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"hash"
	"sync"

	"golang.org/x/crypto/blake2b"
)

type blake2bState struct {
	hash.Hash
	b32 Bytes32
}

var blake2bStatePool = sync.Pool{
	New: func() any {
		h, _ := blake2b.New256(nil)
		return &blake2bState{Hash: h}
	},
}

// Blake2b computes blake2b-256 checksum for given data.
// Storage slots of mappings are derived with it.
func Blake2b(data ...[]byte) (h Bytes32) {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	w := blake2bStatePool.Get().(*blake2bState)
	for _, b := range data {
		w.Write(b)
	}
	w.Sum(w.b32[:0])
	h = w.b32
	w.Reset()
	blake2bStatePool.Put(w)
	return
}
