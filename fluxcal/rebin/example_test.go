package rebin_test

import (
	"fmt"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal/rebin"
)

func ExampleUniformGrid() {
	grid, err := rebin.UniformGrid(4000.4, 4001.6, 0.5)
	if err != nil {
		panic(err)
	}
	fmt.Println(grid)

	// Output:
	// [4000 4000.5 4001 4001.5 4002]
}

func ExampleResample() {
	grid := []float64{0, 1, 2, 3, 4}
	wave := []float64{1, 2, 3}
	counts := []float64{2, 4, 6}

	out, err := rebin.Resample(grid, wave, counts, rebin.WithOversampling(4))
	if err != nil {
		panic(err)
	}
	fmt.Println(out)

	// Output:
	// [0 2 4 6 0]
}

func ExampleEdges() {
	fmt.Println(rebin.Edges([]float64{1, 2, 4}))

	// Output:
	// [0.5 1.5 3 5]
}
