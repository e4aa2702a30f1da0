package seed

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestVoucherSequenceFormat(t *testing.T) {
    s := NewVoucherSequence("FV", 2026, 1)
    assert.Equal(t, "FV-2026-000001", s.Next())
    assert.Equal(t, "FV-2026-000002", s.Next())
}

func TestVoucherSequenceCustomStart(t *testing.T) {
    s := NewVoucherSequence("GV", 2025, 4711)
    assert.Equal(t, "GV-2025-004711", s.Next())
}
