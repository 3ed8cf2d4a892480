package snapshot

import "hash/crc64"

// jonesPoly is the polynomial used by the Redis RDB checksum, distinct
// from the stdlib's predefined ISO and ECMA tables.
const jonesPoly = 0xad93d23594c935a9

// jonesPolyReflected is jonesPoly bit-reversed, the form hash/crc64's
// MakeTable expects for its reflected (LSB-first) tables.
const jonesPolyReflected = 0x95ac9329ac4bc9b5

var jonesTable = crc64.MakeTable(jonesPolyReflected)

// checksum computes the reflected CRC64-Jones of data with initial value
// 0 and no final XOR. hash/crc64 inverts the register on entry and exit,
// so the call passes an inverted seed and inverts the result to cancel
// both.
func checksum(data []byte) uint64 {
	return ^crc64.Update(^uint64(0), jonesTable, data)
}
