// Package main provides the entry point for the mailspider CLI.
//
// Mailspider is a bounded web crawler that harvests contact email
// addresses from a fixed set of seed websites.
//
// Usage:
//
//	mailspider crawl example.com
//	mailspider crawl --keywords contact,about example.com other.org
//
// See --help for all available options.
package main

// main is the entry point for mailspider.
func main() {
	Execute()
}
