package catalog_test

import (
	"fmt"

	"github.com/corbettht/ZZCeti-pipeline/fluxcal/catalog"
)

func ExampleStarID() {
	fmt.Println(catalog.StarID("onedstds/ctionewcal/mgd50.dat"))
	fmt.Println(catalog.StarID("feige34.dat"))

	// Output:
	// gd50
	// feige34
}

func ExampleMagToFlux() {
	fnu := catalog.MagToFlux(0, catalog.ABZeroPoint)
	fmt.Printf("%.3g\n", fnu)
	fmt.Printf("%.2f\n", catalog.FluxToMag(catalog.MagToFlux(15, catalog.ABZeroPoint), catalog.ABZeroPoint))

	// Output:
	// 3.68e-20
	// 15.00
}
