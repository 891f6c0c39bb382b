// FilePath: internal/geohash/geohash.go
package geohash

import (
	"fmt"
	"strings"
)

// base32 is the standard geohash alphabet (no a, i, l, o).
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

var base32Index = func() map[byte]int {
	m := make(map[byte]int, len(base32))
	for i := 0; i < len(base32); i++ {
		m[base32[i]] = i
	}
	return m
}()

// Encode produces a geohash of the given precision for a coordinate pair.
// The range bisection alternates longitude-first, packing five bits per
// output character.
func Encode(lat, lng float64, precision int) string {
	var sb strings.Builder
	latMin, latMax := -90.0, 90.0
	lngMin, lngMax := -180.0, 180.0

	evenBit := true
	bits := 0
	ch := 0

	for sb.Len() < precision {
		if evenBit {
			mid := (lngMin + lngMax) / 2
			if lng >= mid {
				ch = ch<<1 | 1
				lngMin = mid
			} else {
				ch = ch << 1
				lngMax = mid
			}
		} else {
			mid := (latMin + latMax) / 2
			if lat >= mid {
				ch = ch<<1 | 1
				latMin = mid
			} else {
				ch = ch << 1
				latMax = mid
			}
		}
		evenBit = !evenBit

		bits++
		if bits == 5 {
			sb.WriteByte(base32[ch])
			bits = 0
			ch = 0
		}
	}

	return sb.String()
}

// Decode returns the center point of the cell named by the geohash.
// Characters outside the alphabet yield an error.
func Decode(hash string) (lat, lng float64, err error) {
	latMin, latMax := -90.0, 90.0
	lngMin, lngMax := -180.0, 180.0

	evenBit := true
	lower := strings.ToLower(hash)
	for i := 0; i < len(lower); i++ {
		ch, ok := base32Index[lower[i]]
		if !ok {
			return 0, 0, fmt.Errorf("invalid geohash char: %q", lower[i])
		}
		for n := 4; n >= 0; n-- {
			bit := (ch >> uint(n)) & 1
			if evenBit {
				mid := (lngMin + lngMax) / 2
				if bit == 1 {
					lngMin = mid
				} else {
					lngMax = mid
				}
			} else {
				mid := (latMin + latMax) / 2
				if bit == 1 {
					latMin = mid
				} else {
					latMax = mid
				}
			}
			evenBit = !evenBit
		}
	}

	return (latMin + latMax) / 2, (lngMin + lngMax) / 2, nil
}

// cellDimensions maps precision to approximate [height, width] in meters
// at the equator.
var cellDimensions = map[int][2]float64{
	1:  {5000000, 5000000},
	2:  {1250000, 625000},
	3:  {156000, 156000},
	4:  {39100, 19500},
	5:  {4890, 4890},
	6:  {1220, 610},
	7:  {153, 153},
	8:  {38.2, 19.1},
	9:  {4.77, 4.77},
	10: {1.19, 0.596},
}

// CellRadiusMeters approximates the radius of a geohash cell at the given
// precision as half of its larger dimension. Unlisted precisions fall back
// to the precision-7 value. No latitude correction is applied.
func CellRadiusMeters(precision int) float64 {
	dims, ok := cellDimensions[precision]
	if !ok {
		dims = cellDimensions[7]
	}
	if dims[0] > dims[1] {
		return dims[0] / 2
	}
	return dims[1] / 2
}
