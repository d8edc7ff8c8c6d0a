package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/event-discovery/internal/calendar"
	"github.com/pfrederiksen/event-discovery/internal/event"
)

func main() {
	// Create a sample record a week out
	rec := event.NewRecord(
		"Sunburn Arena ft. Alan Walker",
		event.FormatDay(time.Now().AddDate(0, 0, 7)),
		"NSCI Dome",
		"mumbai",
		"Music Shows",
		"https://in.bookmyshow.com/events/sunburn-arena-ft-alan-walker/ET00412345",
		time.Now(),
	)

	filename := "sample-event.ics"
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if _, err := calendar.Write(f, []event.Record{rec}, "Sample"); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
}
