// Package main provides the entry point for the cruxdownloader CLI.
//
// cruxdownloader exports the monthly Chrome UX Report popularity ranking,
// reduced to registrable domains, as a zipped CSV.
//
// Usage:
//
//	cruxdownloader export --credentials-file key.json
//	cruxdownloader months
//
// See --help for all available options.
package main

func main() {
	Execute()
}
