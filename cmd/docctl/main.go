// Command docctl is the operator CLI for docflow: manual reminder scans,
// ad hoc tax calculation, invoice exports and token issuing.
package main

func main() {
	Execute()
}
