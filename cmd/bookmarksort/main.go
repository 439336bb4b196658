// Command bookmarksort serves the bookmark classification API and offers
// offline parse and classify subcommands.
package main

func main() {
	Execute()
}
