package vm

import "strconv"

// wrap32 reduces an int64 into the signed 32-bit range [-2^31, 2^31) by
// modular arithmetic, the same formula the original interpreter uses:
// (i + 2**31) % (2**32) - 2**31.
func wrap32(i int64) int32 {
	const offset = int64(1) << 31
	const modulus = int64(1) << 32
	r := (i + offset) % modulus
	if r < 0 {
		r += modulus
	}
	return int32(r - offset)
}

// floorDiv computes division rounding toward negative infinity, matching
// Python's `//` rather than Go's truncating `/`.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// sign returns -1, 0, or 1.
func sign(i int64) int {
	switch {
	case i > 0:
		return 1
	case i < 0:
		return -1
	default:
		return 0
	}
}

// swapSign negates both operands when they disagree in sign, exactly
// mirroring the original interpreter's swap_sign — used together with
// pythonMod to reproduce `-7 rem 2 = -1` and `7 rem -2 = 1`.
func swapSign(a, b int64) (int64, int64) {
	if sign(a) == sign(b) {
		return a, b
	}
	return -a, -b
}

// pythonMod computes a modulo b with the result taking the sign of b (or
// zero), the way Python's `%` operator does — unlike Go's `%`, which
// takes the sign of a.
func pythonMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
