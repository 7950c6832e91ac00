package apply_test

import (
	"fmt"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal/apply"
)

func ExampleScale() {
	scale := apply.Scale([]float64{0, 2.5, 5}, 10, 2)
	for _, v := range scale {
		fmt.Printf("%.4g\n", v)
	}

	// Output:
	// 0.05
	// 0.005
	// 0.0005
}
