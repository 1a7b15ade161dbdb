package wmh

import "github.com/afcarl/gemini/internal/binpack"

// Bands slices a sketch into htnum bands of bandSize consecutive rows each.
// It requires htnum*bandSize == len(sketch); the band bytes are the exact
// big-endian concatenation of the rows they cover, no hashing, no
// truncation.
func Bands(sketch Sketch, htnum, bandSize int) [][]byte {
	if htnum*bandSize != len(sketch) {
		panic("wmh: htnum*bandSize must equal sample_size")
	}

	bands := make([][]byte, htnum)
	for h := 0; h < htnum; h++ {
		buf := make([]byte, 0, bandSize*binpack.RowSize)
		for r := h * bandSize; r < (h+1)*bandSize; r++ {
			buf = binpack.AppendRow(buf, sketch[r].K, sketch[r].T)
		}
		bands[h] = buf
	}
	return bands
}

// Encode returns the big-endian encoding of the full sketch. Bands'
// invariant test relies on this: the concatenation of all bands must equal
// Encode(sketch).
func Encode(sketch Sketch) []byte {
	buf := make([]byte, 0, len(sketch)*binpack.RowSize)
	for _, row := range sketch {
		buf = binpack.AppendRow(buf, row.K, row.T)
	}
	return buf
}
