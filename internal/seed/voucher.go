package seed

import "fmt"

// VoucherSequence hands out consecutive fuel voucher numbers in the
// format the paper voucher books use: PREFIX-YYYY-NNNNNN.  It is plain
// local state, not safe for concurrent use; the seeder is the only
// caller and runs single-threaded.
type VoucherSequence struct {
    prefix string
    year   int
    next   int
}

// NewVoucherSequence starts a sequence at the given number.
func NewVoucherSequence(prefix string, year, start int) *VoucherSequence {
    return &VoucherSequence{prefix: prefix, year: year, next: start}
}

// Next returns the next voucher number and advances the sequence.
func (s *VoucherSequence) Next() string {
    v := fmt.Sprintf("%s-%04d-%06d", s.prefix, s.year, s.next)
    s.next++
    return v
}
