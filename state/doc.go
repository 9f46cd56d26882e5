// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the storage of native farm contracts.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv bulk write ]
//	        |
//	 [ lru of committed slots ]
//	        |
//	   [ kv store ]
//
// Every slot is addressed by the owning contract address and a 32 bytes key.
// Values are rlp encoded. An empty value means the slot is unset.
package state
