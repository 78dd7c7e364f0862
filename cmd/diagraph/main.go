// Command diagraph runs, serves and inspects dialog graphs.
package main

func main() {
	Execute()
}
