package crypto

// ClearBytes zeroes b in place. VerifyPassword uses it to wipe the key it
// derives once the comparison is done.
func ClearBytes(b []byte) {
	clear(b)
}
