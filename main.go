package main

import "github.com/frahmantamala/payroll-management/cmd"

func main() {
	cmd.Execute()
}
