package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kastellan/goeip/internal"
	"github.com/kastellan/goeip/pkg/client"
)

func main() {
	addr := flag.String("addr", "192.168.1.100:44818", "PLC Address")
	flag.Parse()

	logger := internal.NewConsoleLogger()
	c, err := client.NewClient(*addr, logger)
	if err != nil {
		logger.Errorf("Failed to create client: %v", err)
		os.Exit(1)
	}
	defer c.Close()

	logger.Infof("Listing Identity...")
	id, err := c.ListIdentity()
	if err != nil {
		logger.Errorf("Failed to list identity: %v", err)
	} else {
		fmt.Printf("Vendor: %s (%d)\n", id.VendorName, id.VendorID)
		fmt.Printf("Product Type: %s (%d)\n", id.ProductName, id.ProductType)
		fmt.Printf("Product Code: %d\n", id.ProductCode)
		fmt.Printf("Revision: %d.%d\n", id.MajorRev, id.MinorRev)
		fmt.Printf("Status: %s\n", id.Status)
		fmt.Printf("Serial Number: %s\n", id.Serial)
		fmt.Printf("Device Name: %s\n", id.DeviceName)
		if id.DeviceState >= 0 {
			fmt.Printf("State: %d\n", id.DeviceState)
		}
	}

	logger.Infof("Listing Services...")
	services, err := c.ListServices()
	if err != nil {
		logger.Errorf("Failed to list services: %v", err)
	} else {
		logger.Infof("Found %d services:", len(services))
		for i, s := range services {
			fmt.Printf("Service %d:\n", i+1)
			fmt.Printf("  Version: %d\n", s.Version)
			fmt.Printf("  Flags: 0x%04X\n", s.CapabilityFlags)
			fmt.Printf("  Name: %s\n", s.Name)
		}
	}
}
