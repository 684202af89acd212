// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dagconfig

import "github.com/kaspanet/kaspad/domain/consensus/model/externalapi"

// genesisHash is the hash of the first block in the block DAG for the main
// network (genesis block).
var genesisHash = externalapi.DomainHash{
	0x2a, 0xf7, 0x9a, 0xfb, 0x2c, 0xf7, 0xde, 0xe0,
	0xdf, 0xb3, 0x52, 0x4d, 0xbb, 0x3a, 0x83, 0x57,
	0xa6, 0xd2, 0x3e, 0x63, 0x51, 0x48, 0xb1, 0xf8,
	0xe7, 0x8b, 0xc7, 0x30, 0xed, 0x24, 0xe5, 0x80,
}

// testnetGenesisHash is the hash of the first block in the block DAG for
// the test network (genesis block).
var testnetGenesisHash = externalapi.DomainHash{
	0xc2, 0x89, 0xab, 0xf0, 0xdf, 0x19, 0x4e, 0x42,
	0x50, 0xa0, 0xce, 0x3b, 0x50, 0x06, 0x3a, 0x35,
	0xd8, 0xeb, 0xa6, 0x9b, 0x3b, 0xd8, 0xda, 0xb3,
	0xa7, 0xce, 0x94, 0x96, 0xb5, 0x26, 0xdf, 0x80,
}

// simnetGenesisHash is the hash of the first block in the block DAG for
// the simulation test network (genesis block).
var simnetGenesisHash = externalapi.DomainHash{
	0xd3, 0x7d, 0xd2, 0xb9, 0x25, 0xad, 0x16, 0xa3,
	0xe6, 0x3b, 0xc1, 0x8c, 0xac, 0xf6, 0x87, 0x00,
	0xbd, 0x3c, 0x49, 0xd5, 0xac, 0xd7, 0x94, 0xcb,
	0x19, 0xb1, 0x9a, 0xf9, 0xb8, 0x39, 0xb0, 0xc1,
}

// devnetGenesisHash is the hash of the first block in the block DAG for
// the development network (genesis block).
var devnetGenesisHash = externalapi.DomainHash{
	0x48, 0x9b, 0x5c, 0x34, 0x66, 0x9a, 0x40, 0xfe,
	0x28, 0xac, 0x21, 0x8b, 0x6c, 0x5c, 0x6f, 0x04,
	0x93, 0x31, 0x06, 0x32, 0xf0, 0xba, 0x35, 0x76,
	0xb8, 0x7a, 0x0c, 0xd7, 0x15, 0x4f, 0x4b, 0x47,
}
