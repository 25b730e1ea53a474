// Package main is the sitecrawl command: a live SEO crawl of one site.
//
// Usage:
//
//	sitecrawl crawl example.com
//	sitecrawl crawl --once --markdown -o report.md example.com
//	sitecrawl relays
package main

func main() {
	Execute()
}
