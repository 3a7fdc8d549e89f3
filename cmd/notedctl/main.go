// Package main implements notedctl, the terminal client of the note service.
package main

func main() {
	Execute()
}
