// Package bitset provides the growable bitmap used for column validity and
// boolean column storage.
//
// Bits are addressed by row. A Bitmap only grows by appending and only shrinks
// by Truncate, which is what transaction rollback relies on.
//
// Masks passed in and out as []byte are packed least significant bit first:
// row i lives in byte i/8 at bit i%8.
package bitset
