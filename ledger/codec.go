package ledger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bitfsorg/stakepool-go/identity"
)

const (
	// MaxShareAssetLen bounds the share asset identifier stored in the pool record.
	MaxShareAssetLen = 32

	poolSize     = 89 // start(8) + end(8) + contributed(8) + fees(8) + staked(8) + rewards_paid(8) + batch_fee(8) + asset_len(1) + asset(32)
	positionSize = 44 // owner(20) + staked(8) + checkpoint(8) + mark(8)
	accountSize  = 44 // owner(20) + free(8) + contributed(8) + rewards(8)
)

// SerializePool encodes a Pool to its fixed binary layout.
func SerializePool(p *Pool) ([]byte, error) {
	if len(p.ShareAsset) > MaxShareAssetLen {
		return nil, fmt.Errorf("%w: share asset longer than %d bytes", ErrInvalidPoolData, MaxShareAssetLen)
	}
	buf := make([]byte, poolSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(p.WindowStart.Unix()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(p.WindowEnd.Unix()))
	binary.BigEndian.PutUint64(buf[16:24], p.TotalContributed)
	binary.BigEndian.PutUint64(buf[24:32], p.TotalFeesCollected)
	binary.BigEndian.PutUint64(buf[32:40], p.TotalStaked)
	binary.BigEndian.PutUint64(buf[40:48], p.TotalRewardsPaid)
	binary.BigEndian.PutUint64(buf[48:56], p.BatchFee)
	buf[56] = byte(len(p.ShareAsset))
	copy(buf[57:89], p.ShareAsset)
	return buf, nil
}

// DeserializePool decodes a Pool record.
func DeserializePool(data []byte) (*Pool, error) {
	if len(data) != poolSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPoolData, poolSize, len(data))
	}
	assetLen := int(data[56])
	if assetLen > MaxShareAssetLen {
		return nil, fmt.Errorf("%w: share asset length %d", ErrInvalidPoolData, assetLen)
	}
	return &Pool{
		WindowStart:        time.Unix(int64(binary.BigEndian.Uint64(data[0:8])), 0).UTC(),
		WindowEnd:          time.Unix(int64(binary.BigEndian.Uint64(data[8:16])), 0).UTC(),
		TotalContributed:   binary.BigEndian.Uint64(data[16:24]),
		TotalFeesCollected: binary.BigEndian.Uint64(data[24:32]),
		TotalStaked:        binary.BigEndian.Uint64(data[32:40]),
		TotalRewardsPaid:   binary.BigEndian.Uint64(data[40:48]),
		BatchFee:           binary.BigEndian.Uint64(data[48:56]),
		ShareAsset:         string(data[57 : 57+assetLen]),
	}, nil
}

// SerializePosition encodes a StakePosition.
func SerializePosition(p *StakePosition) []byte {
	buf := make([]byte, positionSize)
	copy(buf[:identity.AddressSize], p.Owner[:])
	binary.BigEndian.PutUint64(buf[20:28], p.StakedAmount)
	binary.BigEndian.PutUint64(buf[28:36], p.FeeCheckpoint)
	binary.BigEndian.PutUint64(buf[36:44], p.CheckpointMark)
	return buf
}

// DeserializePosition decodes a StakePosition.
func DeserializePosition(data []byte) (*StakePosition, error) {
	if len(data) != positionSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPositionData, positionSize, len(data))
	}
	pos := &StakePosition{}
	copy(pos.Owner[:], data[:identity.AddressSize])
	pos.StakedAmount = binary.BigEndian.Uint64(data[20:28])
	pos.FeeCheckpoint = binary.BigEndian.Uint64(data[28:36])
	pos.CheckpointMark = binary.BigEndian.Uint64(data[36:44])
	return pos, nil
}

// SerializeAccount encodes an Account.
func SerializeAccount(a *Account) []byte {
	buf := make([]byte, accountSize)
	copy(buf[:identity.AddressSize], a.Owner[:])
	binary.BigEndian.PutUint64(buf[20:28], a.FreeShares)
	binary.BigEndian.PutUint64(buf[28:36], a.Contributed)
	binary.BigEndian.PutUint64(buf[36:44], a.RewardsReceived)
	return buf
}

// DeserializeAccount decodes an Account.
func DeserializeAccount(data []byte) (*Account, error) {
	if len(data) != accountSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAccountData, accountSize, len(data))
	}
	a := &Account{}
	copy(a.Owner[:], data[:identity.AddressSize])
	a.FreeShares = binary.BigEndian.Uint64(data[20:28])
	a.Contributed = binary.BigEndian.Uint64(data[28:36])
	a.RewardsReceived = binary.BigEndian.Uint64(data[36:44])
	return a, nil
}

// markKey encodes a mark as an 8-byte big-endian key for ordered iteration.
func markKey(mark uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, mark)
	return k
}

// recordKey orders records by mark, then by index within the batch.
func recordKey(mark uint64, index uint32) []byte {
	k := make([]byte, 12)
	binary.BigEndian.PutUint64(k[0:8], mark)
	binary.BigEndian.PutUint32(k[8:12], index)
	return k
}
