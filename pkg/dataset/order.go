package dataset

import "fmt"

// NthEvent moves to the n-th entry in event-number order.
func (d *Dataset) NthEvent(n int) (int, error) {
	if d.h == nil {
		return -1, ErrNotLoaded
	}
	ix := d.h.index()
	if n < 0 || n >= ix.Len() {
		return -1, fmt.Errorf("%w: event rank %d not in [0,%d)", ErrOutOfRange, n, ix.Len())
	}
	pos, err := d.GetEntry(ix.At(n).Pos)
	if err != nil {
		return -1, err
	}
	d.eventIdx = Resolved(n)
	return pos, nil
}

// FirstEvent moves to the lowest event number.
func (d *Dataset) FirstEvent() (int, error) { return d.NthEvent(0) }

// LastEvent moves to the highest event number.
func (d *Dataset) LastEvent() (int, error) { return d.NthEvent(d.N() - 1) }

// eventRank resolves the cursor's rank in event-number order.
func (d *Dataset) eventRank() int {
	if i, ok := d.eventIdx.Get(); ok {
		return i
	}
	return d.h.index().Rank(d.Current())
}

// NextEvent moves to the next event number, staying on the last one.
func (d *Dataset) NextEvent() (int, error) {
	if d.h == nil {
		return -1, ErrNotLoaded
	}
	i := d.eventRank()
	if i < d.N()-1 {
		i++
	}
	return d.NthEvent(i)
}

// PreviousEvent moves to the previous event number, staying on the first
// one.
func (d *Dataset) PreviousEvent() (int, error) {
	if d.h == nil {
		return -1, ErrNotLoaded
	}
	i := d.eventRank()
	if i > 0 {
		i--
	}
	return d.NthEvent(i)
}
