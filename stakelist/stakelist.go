// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakelist keeps the delegation records of a pool in a fixed-capacity
// arena addressed by index.
package stakelist

import (
	"github.com/pkg/errors"

	"github.com/stakehouse/lsd/lsd"
	"github.com/stakehouse/lsd/reverts"
)

// Record is the pool's view of one stake account.
type Record struct {
	StakeAccount                lsd.Address `json:"stakeAccount"`
	LastUpdateDelegatedLamports uint64      `json:"lastUpdateDelegatedLamports"`
	LastUpdateEpoch             uint64      `json:"lastUpdateEpoch"`
	IsEmergencyUnstaking        bool        `json:"isEmergencyUnstaking"`
}

// List is an ordered arena of records. Removal swaps the last record into the
// freed slot, so indexes of other records may change.
type List struct {
	capacity uint32
	records  []Record
}

// New creates an empty list holding at most capacity records.
func New(capacity uint32) *List {
	return &List{capacity: capacity}
}

// Capacity returns the maximum number of records.
func (l *List) Capacity() uint32 { return l.capacity }

// Len returns the number of records.
func (l *List) Len() uint32 { return uint32(len(l.records)) }

// Append adds a record at the end and returns its index.
func (l *List) Append(r Record) (uint32, error) {
	if l.Len() >= l.capacity {
		return 0, reverts.ErrStakeListFull
	}
	l.records = append(l.records, r)
	return l.Len() - 1, nil
}

// Get returns a copy of the record at index.
func (l *List) Get(index uint32) (Record, error) {
	if index >= l.Len() {
		return Record{}, errors.Wrapf(reverts.ErrStakeIndexOutOfRange, "index %d, len %d", index, l.Len())
	}
	return l.records[index], nil
}

// GetChecked returns the record at index after verifying that it tracks
// stakeAccount.
func (l *List) GetChecked(index uint32, stakeAccount lsd.Address) (Record, error) {
	r, err := l.Get(index)
	if err != nil {
		return Record{}, err
	}
	if r.StakeAccount != stakeAccount {
		return Record{}, errors.Wrapf(reverts.ErrStakeIndexMismatch, "index %d holds %s, not %s", index, r.StakeAccount, stakeAccount)
	}
	return r, nil
}

// Set overwrites the record at index.
func (l *List) Set(index uint32, r Record) error {
	if index >= l.Len() {
		return errors.Wrapf(reverts.ErrStakeIndexOutOfRange, "index %d, len %d", index, l.Len())
	}
	l.records[index] = r
	return nil
}

// Remove deletes the record at index by moving the last record into its slot.
func (l *List) Remove(index uint32) error {
	n := l.Len()
	if index >= n {
		return errors.Wrapf(reverts.ErrStakeIndexOutOfRange, "index %d, len %d", index, n)
	}
	l.records[index] = l.records[n-1]
	l.records[n-1] = Record{}
	l.records = l.records[:n-1]
	return nil
}

// Iterate calls fn for each record in index order until fn returns false.
func (l *List) Iterate(fn func(index uint32, r Record) bool) {
	for i, r := range l.records {
		if !fn(uint32(i), r) {
			return
		}
	}
}

// Records returns a copy of every record.
func (l *List) Records() []Record {
	return append([]Record(nil), l.records...)
}

// Clone returns an independent copy of the list.
func (l *List) Clone() *List {
	return &List{
		capacity: l.capacity,
		records:  l.Records(),
	}
}
