package dither_test

import (
	"fmt"

	"github.com/cwbudde/algo-micfront/dsp/dither"
)

func ExampleQuantizer_ProcessTo() {
	q, err := dither.New(dither.WithType(dither.None))
	if err != nil {
		panic(err)
	}

	fmt.Println(q.ProcessTo(nil, []float64{0, 0.25, -0.5, 1.2}))
	// Output: [0 8191 -16383 32767]
}
