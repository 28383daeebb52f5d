// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/chainforge/evmcore/core/types"
	"github.com/chainforge/evmcore/rlp"
)

// extBlock is the on-disk unit a blocks file is made of: a header plus
// its body, RLP-encoded as one plain struct and framed with a 4-byte
// big-endian length prefix. types.Block itself carries no RLP codec
// (§6 never persists a whole block as one record), so this wrapper is
// this command's own wire format, not a core.types concern.
type extBlock struct {
	Header *types.Header
	Txs    []*types.Transaction
	Uncles []*types.Header
}

// writeBlocksFile writes blocks to path in length-framed RLP records.
func writeBlocksFile(path string, blocks []*types.Block) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, b := range blocks {
		enc, err := rlp.EncodeToBytes(&extBlock{Header: b.Header(), Txs: b.Transactions(), Uncles: b.Uncles()})
		if err != nil {
			return fmt.Errorf("cmd/evm: encode block %d: %w", b.NumberU64(), err)
		}
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(enc)))
		if _, err := f.Write(length[:]); err != nil {
			return err
		}
		if _, err := f.Write(enc); err != nil {
			return err
		}
	}
	return nil
}

// readBlocksFile reads path's length-framed RLP records back into
// parallel header/body slices, the shape core.ChainStore.PersistBlocks
// takes directly.
func readBlocksFile(path string) ([]*types.Header, []*types.Body, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var headers []*types.Header
	var bodies []*types.Body
	var length [4]byte
	for {
		if _, err := io.ReadFull(f, length[:]); err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, fmt.Errorf("cmd/evm: read block length: %w", err)
		}
		enc := make([]byte, binary.BigEndian.Uint32(length[:]))
		if _, err := io.ReadFull(f, enc); err != nil {
			return nil, nil, fmt.Errorf("cmd/evm: read block record: %w", err)
		}
		var block extBlock
		if err := rlp.DecodeBytes(enc, &block); err != nil {
			return nil, nil, fmt.Errorf("cmd/evm: decode block record %d: %w", len(headers), err)
		}
		headers = append(headers, block.Header)
		bodies = append(bodies, &types.Body{Transactions: block.Txs, Uncles: block.Uncles})
	}
	return headers, bodies, nil
}
