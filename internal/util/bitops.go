package util

// Align rounds addr up to a multiple of alignment, which must be a power of two.
func Align(addr int64, alignment int) int64 {
	return (addr + int64(alignment) - 1) &^ (int64(alignment) - 1)
}
