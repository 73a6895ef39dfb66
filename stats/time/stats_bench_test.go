package time

import (
	"strconv"
	"testing"

	"github.com/cwbudde/algo-micfront/internal/testutil"
)

func BenchmarkCalculate(b *testing.B) {
	for _, n := range []int{8, 128, 1024, 8000} {
		x := testutil.DeterministicInt16Noise(1, n)
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(n * 2))

			for range b.N {
				Calculate(x)
			}
		})
	}
}
