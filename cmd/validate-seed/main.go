package main

import (
	"fmt"
	"os"

	"github.com/marcelsud/webhookhub/route"
)

/* validate-seed - Standalone CLI tool to validate seed.yaml
 * Usage: go run cmd/validate-seed/main.go [seed.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	seedFile := "seed.yaml"
	if len(os.Args) > 1 {
		seedFile = os.Args[1]
	}

	fmt.Printf("Validating seed file: %s\n\n", seedFile)

	loader := route.NewLoader()
	if err := loader.Load(seedFile); err != nil {
		fmt.Fprintf(os.Stderr, "❌ VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	routes := loader.List()
	fmt.Printf("✓ VALIDATION PASSED\n\n")
	fmt.Printf("Loaded %d route(s):\n", len(routes))

	for i, rt := range routes {
		fmt.Printf("\n%d. Route: %s (%s)\n", i+1, rt.Name, rt.Slug)
		fmt.Printf("   Project:        %s\n", rt.ProjectName)
		fmt.Printf("   Max Retries:    %d\n", rt.MaxRetries)
		fmt.Printf("   Retention Days: %d\n", rt.RetentionDays)
		fmt.Printf("   Active:         %t\n", rt.IsActive)

		for _, destination := range rt.ActiveDestinations() {
			fmt.Printf("   -> [%d] %s: %s\n", destination.Priority, destination.Label, destination.Endpoint)
		}
	}

	fmt.Printf("\n✓ All routes are valid!\n")
	os.Exit(0)
}
