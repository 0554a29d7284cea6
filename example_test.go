package tsbatch_test

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/tsbatch"
	"github.com/hupe1980/tsbatch/statistics"
)

func Example() {
	b := tsbatch.New()

	err := b.Write(3, func(w *tsbatch.Writer) error {
		return errors.Join(
			w.WriteTag("host", nil, slices.Values([]string{"a", "b", "a"})),
			w.WriteF64("usage", []byte{0b101}, slices.Values([]float64{0.5, 0.7})),
			w.WriteTime("time", slices.Values([]int64{10, 20, 30})),
		)
	})
	if err != nil {
		panic(err)
	}

	// A failing transaction leaves the batch untouched.
	err = b.Write(1, func(w *tsbatch.Writer) error {
		return w.WriteF64("usage", nil, slices.Values([]float64{}))
	})
	fmt.Println(err)

	usage, _ := b.Column("usage")
	stats := usage.Stats().(*statistics.F64)
	fmt.Println(b.Rows(), usage.NullCount(), *stats.Min, *stats.Max)

	host, _ := b.Column("host")
	fmt.Println(host.Dictionary().Values())
	// Output:
	// incorrect number of values provided
	// 3 1 0.5 0.7
	// [a b]
}

func ExampleWriter_WriteTagDict() {
	b := tsbatch.New()

	// Rows reference a local table of values by index.
	table := []string{"us-east", "us-west", "eu-central"}
	err := b.Write(4, func(w *tsbatch.Writer) error {
		return w.WriteTagDict("region", nil, slices.Values([]int{2, 2, 0, 2}), table)
	})
	if err != nil {
		panic(err)
	}

	region, _ := b.Column("region")
	fmt.Println(region.Dictionary().Values())
	// Output:
	// [eu-central us-east]
}
