package pcm_test

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-micfront/pcm"
)

func ExampleConvertCSV() {
	in := "timestamp,value\n0.000,33768\n0.001,31768\n0.002,32768\n"

	c, err := pcm.ConvertCSV(strings.NewReader(in), pcm.WithSampleRate(1000))
	if err != nil {
		panic(err)
	}
	fmt.Println(c.Samples, c.HeaderSkipped)

	// Output:
	// [1000 -1000 0] true
}

func ExampleEncode() {
	fmt.Printf("% x\n", pcm.Encode(nil, []int16{256, -2}))

	// Output:
	// 00 01 fe ff
}
