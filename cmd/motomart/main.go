package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "motomart",
	Short: "Motomart — vehicle marketplace API",
	Long:  "Motomart is a REST backend for a vehicle marketplace: listings, orders, payments, PDF invoices.",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(routeListCmd)
}
