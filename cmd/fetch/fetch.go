// One-shot probe of the sreality estates endpoint. Fetches page 1 and prints
// what the crawler would keep, without touching any database.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mdolezal/sreality-alert/pkg/sreality"
)

func main() {
	client := sreality.NewClient("", 30*time.Second)

	estates, err := client.FetchEstates(context.Background(), 1)
	if err != nil {
		log.Fatalf("fetch failed: %v", err)
	}

	kept := 0
	for _, estate := range estates {
		if !sreality.IsPragueLocality(estate.Locality) || estate.HashID == nil {
			continue
		}
		kept++

		size, layout := sreality.ExtractSizeAndLayout(estate.Name)
		fmt.Printf("%d  %s (%s)\n", *estate.HashID, estate.Name, estate.Locality)
		if size != nil {
			fmt.Printf("    size: %d m²\n", *size)
		}
		if layout != nil {
			fmt.Printf("    layout: %s\n", *layout)
		}
		if sreality.HasGarage(estate.Labels, estate.LabelsAll) {
			fmt.Println("    garage: yes")
		}
	}

	fmt.Printf("%d estates on page 1, %d in Prague\n", len(estates), kept)
}
