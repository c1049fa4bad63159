package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/noah-isme/tiered-discount/internal/discount"
)

// tiercheck validates a tier metafield value before it is saved on a product.
// Usage: tiercheck [-quantity N] [file]   (reads stdin when no file is given)
// Exit code 0 = ok, 1 = invalid config, 2 = other error.
func main() {
	quantity := flag.Int("quantity", 0, "line quantity to preview tier selection for")
	flag.Parse()
	os.Exit(run(flag.Arg(0), *quantity))
}

func run(path string, quantity int) int {
	if path == "" {
		return check(os.Stdin, os.Stdout, os.Stderr, quantity)
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tiercheck error: %v\n", err)
		return 2
	}
	defer func() {
		_ = f.Close()
	}()
	return check(f, os.Stdout, os.Stderr, quantity)
}

type selection struct {
	Policy discount.Policy `json:"policy"`
	Tier   *discount.Tier  `json:"tier"`
}

type report struct {
	Tiers     []discount.Tier `json:"tiers"`
	Quantity  int             `json:"quantity,omitempty"`
	Selection []selection     `json:"selection,omitempty"`
}

func check(in io.Reader, stdout, stderr io.Writer, quantity int) int {
	raw, err := io.ReadAll(in)
	if err != nil {
		fmt.Fprintf(stderr, "tiercheck error: %v\n", err)
		return 2
	}
	tiers, err := discount.ParseTiers(string(raw))
	if err != nil {
		fmt.Fprintf(stderr, "INVALID: %v\n", err)
		return 1
	}

	out := report{Tiers: tiers}
	if quantity > 0 {
		out.Quantity = quantity
		for _, policy := range []discount.Policy{discount.PolicyExact, discount.PolicyBestMatch} {
			sel := selection{Policy: policy}
			if tier, ok := policy.Select(tiers, quantity); ok {
				sel.Tier = &tier
			}
			out.Selection = append(out.Selection, sel)
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(stderr, "tiercheck error: %v\n", err)
		return 2
	}
	return 0
}
