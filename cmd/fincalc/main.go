// Command fincalc runs the fincontrol calculators from the terminal.
package main

func main() {
	Execute()
}
