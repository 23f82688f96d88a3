// Package positionid encodes backgammon positions as the 14-character
// position IDs used by GNU Backgammon, so positions can be exchanged with
// other tools and passed on the command line.
package positionid

import (
	"errors"
)

// Length is the length of a position ID string
const Length = 14

// Base64 alphabet used for position ID encoding
const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Board is a position seen from the player on roll: [1] holds the player on
// roll and [0] the opponent, each indexed by that player's own point number
// minus one. Index 24 is the bar.
type Board [2][25]uint8

// key is the 80-bit packed form of a board: for each player and point, one
// 1-bit per checker followed by a 0 separator.
type key [10]uint8

// ErrInvalid is returned when a position ID cannot be decoded
var ErrInvalid = errors.New("invalid position ID")

// Encode returns the position ID of b.
func Encode(b Board) string {
	k := pack(b)
	result := make([]byte, Length)
	puch := k[:]

	for i := 0; i < 3; i++ {
		result[i*4] = base64Chars[puch[0]>>2]
		result[i*4+1] = base64Chars[((puch[0]&0x03)<<4)|(puch[1]>>4)]
		result[i*4+2] = base64Chars[((puch[1]&0x0F)<<2)|(puch[2]>>6)]
		result[i*4+3] = base64Chars[puch[2]&0x3F]
		puch = puch[3:]
	}
	result[12] = base64Chars[puch[0]>>2]
	result[13] = base64Chars[(puch[0]&0x03)<<4]

	return string(result)
}

// Decode parses a position ID. The decoded board is checked with Valid.
func Decode(id string) (Board, error) {
	var k key
	if len(id) != Length {
		return Board{}, ErrInvalid
	}

	var ach [Length]uint8
	for i := 0; i < Length; i++ {
		ach[i] = base64Decode(id[i])
		if ach[i] == 255 {
			return Board{}, ErrInvalid
		}
	}

	pch := ach[:]
	for i := 0; i < 3; i++ {
		k[i*3] = (pch[0] << 2) | (pch[1] >> 4)
		k[i*3+1] = (pch[1] << 4) | (pch[2] >> 2)
		k[i*3+2] = (pch[2] << 6) | pch[3]
		pch = pch[4:]
	}
	k[9] = (pch[0] << 2) | (pch[1] >> 4)

	b, ok := unpack(k)
	if !ok || !Valid(b) {
		return Board{}, ErrInvalid
	}
	return b, nil
}

// Valid reports whether b could occur in a game: at most 15 checkers per
// player, no point shared by both players, and not both players stuck on
// the bar against closed boards.
func Valid(b Board) bool {
	var ac [2]int
	for i := 0; i < 25; i++ {
		ac[0] += int(b[0][i])
		ac[1] += int(b[1][i])
		if ac[0] > 15 || ac[1] > 15 {
			return false
		}
	}

	for i := 0; i < 24; i++ {
		if b[0][i] > 0 && b[1][23-i] > 0 {
			return false
		}
	}

	for i := 0; i < 6; i++ {
		if b[0][i] < 2 || b[1][i] < 2 {
			return true
		}
	}
	return b[0][24] == 0 || b[1][24] == 0
}

func pack(b Board) key {
	var k key
	bitPos := 0
	for i := 0; i < 2; i++ {
		for j := 0; j < 25; j++ {
			for c := 0; c < int(b[i][j]); c++ {
				k[bitPos/8] |= 1 << (bitPos % 8)
				bitPos++
			}
			bitPos++
		}
	}
	return k
}

func unpack(k key) (Board, bool) {
	var b Board
	i, j := 0, 0
	for a := 0; a < len(k); a++ {
		cur := k[a]
		for bit := 0; bit < 8; bit++ {
			if cur&0x1 != 0 {
				if i >= 2 {
					return b, false
				}
				b[i][j]++
			} else {
				j++
				if j == 25 {
					i++
					j = 0
				}
			}
			cur >>= 1
		}
	}
	return b, true
}

func base64Decode(ch byte) uint8 {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return ch - 'A'
	case ch >= 'a' && ch <= 'z':
		return ch - 'a' + 26
	case ch >= '0' && ch <= '9':
		return ch - '0' + 52
	case ch == '+':
		return 62
	case ch == '/':
		return 63
	}
	return 255
}
