package window

// pointArgs lays out a POINT passed by value for a target with the given word
// size: one packed register on 64-bit Windows, two words on 32-bit.
func pointArgs(p Point, wordSize uintptr) []uintptr {
	if wordSize >= 8 {
		return []uintptr{uintptr(uint64(uint32(p.X)) | uint64(uint32(p.Y))<<32)}
	}
	return []uintptr{uintptr(uint32(p.X)), uintptr(uint32(p.Y))}
}
